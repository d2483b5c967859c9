// ics2npy converts an ICS dataset to a NumPy .npy file. Defaults for
// the flags can be placed in $HOME/.ics2npy.yaml.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/sbinet/npyio"
	"github.com/spf13/viper"

	ics "github.com/tibuch/libics"
	"github.com/tibuch/libics/getbytes"
)

// setupViper points the configuration manager at the optional config
// file and sets the defaults.
func setupViper() {
	viper.SetDefault("Verbose", false)
	viper.SetDefault("OutputDir", "")
	viper.SetConfigName(".ics2npy")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")
	// A missing config file simply leaves the defaults in place.
	viper.ReadInConfig()
}

func main() {
	setupViper()
	out := flag.String("o", "", "output filename (default: input with .npy suffix)")
	verbose := flag.Bool("v", viper.GetBool("Verbose"), "verbose output")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: ics2npy [-o out.npy] [-v] file.ics\n")
		os.Exit(2)
	}

	d, err := ics.Open(flag.Arg(0), "r")
	if err != nil {
		log.Fatalf("ics2npy: %s: %v", flag.Arg(0), err)
	}
	defer d.Close()

	dt, nDims, dims, err := d.GetLayout()
	if err != nil {
		log.Fatalf("ics2npy: %v", err)
	}
	buf := make([]byte, d.GetDataSize())
	if err := d.GetData(buf); err != nil {
		log.Fatalf("ics2npy: reading %s: %v", flag.Arg(0), err)
	}

	name := *out
	if name == "" {
		base := strings.TrimSuffix(d.Filename, filepath.Ext(d.Filename)) + ".npy"
		if dir := viper.GetString("OutputDir"); dir != "" {
			base = filepath.Join(dir, filepath.Base(base))
		}
		name = base
	}
	f, err := os.Create(name)
	if err != nil {
		log.Fatalf("ics2npy: %v", err)
	}

	// npyio writes the flattened samples; the ICS dimension sizes are
	// reported separately in verbose mode.
	switch dt {
	case ics.TypeUint8:
		err = npyio.Write(f, buf)
	case ics.TypeSint8:
		err = npyio.Write(f, getbytes.ToSliceInt8(buf))
	case ics.TypeUint16:
		err = npyio.Write(f, getbytes.ToSliceUint16(buf))
	case ics.TypeSint16:
		err = npyio.Write(f, getbytes.ToSliceInt16(buf))
	case ics.TypeUint32:
		err = npyio.Write(f, getbytes.ToSliceUint32(buf))
	case ics.TypeSint32:
		err = npyio.Write(f, getbytes.ToSliceInt32(buf))
	case ics.TypeReal32:
		err = npyio.Write(f, getbytes.ToSliceFloat32(buf))
	case ics.TypeReal64:
		err = npyio.Write(f, getbytes.ToSliceFloat64(buf))
	case ics.TypeComplex32:
		err = npyio.Write(f, getbytes.ToSliceComplex64(buf))
	case ics.TypeComplex64:
		err = npyio.Write(f, getbytes.ToSliceComplex128(buf))
	default:
		log.Fatalf("ics2npy: cannot convert %s samples", dt)
	}
	if err != nil {
		f.Close()
		log.Fatalf("ics2npy: writing %s: %v", name, err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("ics2npy: %v", err)
	}
	if *verbose {
		fmt.Printf("%s: %s, %d dimensions %v -> %s\n", flag.Arg(0), dt, nDims, dims, name)
	}
}
