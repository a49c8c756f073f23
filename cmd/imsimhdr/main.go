package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/lsst-sims/imsimobs/imsim"
	"github.com/lsst-sims/imsimobs/ingest"
)

const helpBlurb = `imsimhdr translates the headers of raw imsim FITS files into standard
observation metadata and prints the result as YAML, one document per file.

Usage: imsimhdr [-root DIR] [-wait DURATION] FILE [FILE...]

-root points at the installation containing policy/imsim.yaml (default .).
-wait polls for files that have not landed yet, up to the given duration.

Example:
	imsimhdr -root /opt/obs-imsim -wait 30s raw_5000_R22_S11.fits
`

func main() {
	rootDir := flag.String("root", ".", "installation root containing policy/imsim.yaml")
	wait := flag.Duration("wait", 0, "how long to wait for files that have not landed yet")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, helpBlurb)
	}
	flag.Parse()
	paths := flag.Args()
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	tr, err := imsim.NewTranslator(imsim.New(*rootDir))
	if err != nil {
		log.Fatalf("error loading camera policy: %v", err)
	}

	enc := yaml.NewEncoder(os.Stdout)
	defer enc.Close()
	for _, path := range paths {
		if *wait > 0 {
			if err := ingest.WaitForFile(path, *wait); err != nil {
				log.Fatalf("%s did not land within %v: %v", path, *wait, err)
			}
		}
		raw, err := ingest.ParseRaw(path, tr)
		if err != nil {
			log.Fatalf("error translating %s: %v", path, err)
		}
		if err := enc.Encode(raw); err != nil {
			log.Fatal(err)
		}
	}
}
