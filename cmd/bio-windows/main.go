package main

/*
bio-windows slides fixed-length windows along a coordinate-sorted BAM or BED
file and writes a bedGraph of the number of reads or features in each window.
With -features, it instead converts every input annotation into the
coordinates of the features it overlaps and writes the result as BED12.

Example:

  bio-windows -window 500 -region chr1:1-5000000 in.bam out.bedgraph
*/

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/GuttmanLab/guttmanlab-core/cmd/bio-windows/windows"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
)

var (
	windowSize          = flag.Int("window", windows.DefaultOpts.WindowSize, "Window length in bases")
	minCount            = flag.Int("min-count", windows.DefaultOpts.MinCount, "Windows with fewer annotations are not written")
	region              = flag.String("region", windows.DefaultOpts.Region, "Restrict the input to the specified region. Format as <contig ID>:<1-based first pos>-<last pos>, <contig ID>:<1-based pos>, or just <contig ID>")
	targets             = flag.String("targets", windows.DefaultOpts.TargetsPath, "BED file; if set, only annotations intersecting its intervals are counted")
	features            = flag.String("features", windows.DefaultOpts.FeaturesPath, "BED file of features; if set, write the input converted to feature coordinates instead of window counts")
	bamIndexPath        = flag.String("index", windows.DefaultOpts.BAMIndexPath, "Input BAM index path. Defaults to bampath + .bai")
	strandIsFirstOfPair = flag.Bool("strand-first-of-pair", windows.DefaultOpts.StrandIsFirstOfPair, "Read 1 reports the strand of a paired fragment; otherwise read 2 does")
	oneBased            = flag.Bool("one-based", windows.DefaultOpts.OneBasedInput, "BED start coordinates are 1-based")
)

func bioWindowsUsage() {
	fmt.Printf("Usage: %s [OPTIONS] inpath outpath\n", os.Args[0])
	fmt.Printf("inpath is a sorted BAM (*.bam) or BED file.  Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = bioWindowsUsage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 2 {
		log.Fatalf("Expected inpath and outpath; please check flag syntax: '%s'", strings.Join(flag.Args(), " "))
	}
	opts := windows.Opts{
		WindowSize:          *windowSize,
		MinCount:            *minCount,
		Region:              *region,
		TargetsPath:         *targets,
		FeaturesPath:        *features,
		BAMIndexPath:        *bamIndexPath,
		StrandIsFirstOfPair: *strandIsFirstOfPair,
		OneBasedInput:       *oneBased,
	}
	if err := windows.Run(vcontext.Background(), flag.Arg(0), flag.Arg(1), &opts); err != nil {
		log.Fatalf("%v", err)
	}
	log.Debug.Printf("exiting")
}
