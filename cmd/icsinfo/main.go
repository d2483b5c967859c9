// icsinfo prints the layout and metadata of an ICS dataset, and
// optionally simple statistics over its sample values.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/davecgh/go-spew/spew"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	ics "github.com/tibuch/libics"
	"github.com/tibuch/libics/getbytes"
)

func main() {
	dump := flag.Bool("dump", false, "dump the full dataset record")
	stats := flag.Bool("stats", false, "compute statistics over the sample values")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: icsinfo [-dump] [-stats] file.ics\n")
		os.Exit(2)
	}

	d, err := ics.Open(flag.Arg(0), "r")
	if err != nil {
		log.Fatalf("icsinfo: %s: %v", flag.Arg(0), err)
	}
	defer d.Close()

	dt, nDims, dims, err := d.GetLayout()
	if err != nil {
		log.Fatalf("icsinfo: %v", err)
	}
	fmt.Printf("file:        %s\n", d.Filename)
	fmt.Printf("version:     %d\n", d.Version)
	fmt.Printf("type:        %s\n", dt)
	fmt.Printf("dimensions:  %d\n", nDims)
	fmt.Printf("compression: %s (level %d)\n", d.Compression, d.CompLevel)
	if bits, err := d.GetSignificantBits(); err == nil {
		fmt.Printf("significant bits: %d\n", bits)
	}
	if coord, err := d.GetCoordinateSystem(); err == nil {
		fmt.Printf("coordinates: %s\n", coord)
	}
	if scil, err := d.GetScilType(); err == nil && scil != "" {
		fmt.Printf("SCIL type:   %s\n", scil)
	}
	for i := 0; i < nDims; i++ {
		order, label, _ := d.GetOrder(i)
		origin, scale, units, _ := d.GetPosition(i)
		fmt.Printf("  dim %d: size %d  order %q  label %q  origin %g  scale %g  units %q\n",
			i, dims[i], order, label, origin, scale, units)
	}
	fmt.Printf("image size:  %d imels, %d bytes\n", d.GetImageSize(), d.GetDataSize())

	if *dump {
		spew.Fdump(os.Stdout, d)
	}
	if *stats {
		if err := printStats(d, dt); err != nil {
			log.Fatalf("icsinfo: %v", err)
		}
	}
}

// printStats reads the whole body and prints count, min, max, mean and
// standard deviation of the sample values. Complex kinds are refused.
func printStats(d *ics.Dataset, dt ics.DataType) error {
	buf := make([]byte, d.GetDataSize())
	if err := d.GetData(buf); err != nil {
		return err
	}
	var values []float64
	switch dt {
	case ics.TypeUint8:
		values = toFloats(len(buf), func(i int) float64 { return float64(buf[i]) })
	case ics.TypeSint8:
		values = toFloats(len(buf), func(i int) float64 { return float64(int8(buf[i])) })
	case ics.TypeUint16:
		s := getbytes.ToSliceUint16(buf)
		values = toFloats(len(s), func(i int) float64 { return float64(s[i]) })
	case ics.TypeSint16:
		s := getbytes.ToSliceInt16(buf)
		values = toFloats(len(s), func(i int) float64 { return float64(s[i]) })
	case ics.TypeUint32:
		s := getbytes.ToSliceUint32(buf)
		values = toFloats(len(s), func(i int) float64 { return float64(s[i]) })
	case ics.TypeSint32:
		s := getbytes.ToSliceInt32(buf)
		values = toFloats(len(s), func(i int) float64 { return float64(s[i]) })
	case ics.TypeReal32:
		s := getbytes.ToSliceFloat32(buf)
		values = toFloats(len(s), func(i int) float64 { return float64(s[i]) })
	case ics.TypeReal64:
		values = getbytes.ToSliceFloat64(buf)
	default:
		return fmt.Errorf("statistics are not defined for %s samples", dt)
	}
	if len(values) == 0 {
		return fmt.Errorf("no sample values")
	}
	fmt.Printf("samples: %d  min %g  max %g  mean %g  stddev %g\n",
		len(values), floats.Min(values), floats.Max(values),
		stat.Mean(values, nil), stat.StdDev(values, nil))
	return nil
}

func toFloats(n int, at func(int) float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = at(i)
	}
	return values
}
