package windows

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GuttmanLab/guttmanlab-core/encoding/bed"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	shutdown := grail.Init()
	status := m.Run()
	shutdown()
	os.Exit(status)
}

const inputBED = "chr1\t0\t50\ta\nchr1\t40\t90\tb\nchr2\t0\t10\tc\n"

func writeFile(t *testing.T, dir, name, data string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, ioutil.WriteFile(path, []byte(data), 0644))
	return path
}

func run(t *testing.T, inPath, outPath string, opts Opts) []string {
	require.NoError(t, Run(vcontext.Background(), inPath, outPath, &opts))
	data, err := ioutil.ReadFile(outPath)
	require.NoError(t, err)
	out := strings.TrimSuffix(string(data), "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

func TestRunWindowCounts(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	inPath := writeFile(t, tempDir, "in.bed", inputBED)
	outPath := filepath.Join(tempDir, "out.bedgraph")

	opts := DefaultOpts
	opts.WindowSize = 30
	opts.MinCount = 2
	lines := run(t, inPath, outPath, opts)
	require.Equal(t, 40, len(lines))
	expect.EQ(t, lines[0], "chr1\t10\t40\t2")
	expect.EQ(t, lines[39], "chr1\t49\t79\t2")

	opts.MinCount = 1
	opts.Region = "chr2"
	lines = run(t, inPath, outPath, opts)
	require.Equal(t, 10, len(lines))
	expect.EQ(t, lines[0], "chr2\t0\t30\t1")
	expect.EQ(t, lines[9], "chr2\t9\t39\t1")

	opts.Region = ""
	opts.TargetsPath = writeFile(t, tempDir, "targets.bed", "chr1\t60\t70\n")
	lines = run(t, inPath, outPath, opts)
	require.Equal(t, 80, len(lines))
	expect.EQ(t, lines[0], "chr1\t10\t40\t1")
	expect.EQ(t, lines[79], "chr1\t89\t119\t1")
}

func TestRunCompressedOutput(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	inPath := writeFile(t, tempDir, "in.bed", inputBED)
	outPath := filepath.Join(tempDir, "out.bedgraph.gz")

	opts := DefaultOpts
	opts.WindowSize = 30
	opts.MinCount = 2
	require.NoError(t, Run(vcontext.Background(), inPath, outPath, &opts))
	// Each bedGraph line reads back as a BED4 record named by its count.
	records, err := bed.ReadAll(outPath, bed.Opts{})
	require.NoError(t, err)
	require.Equal(t, 40, len(records))
	expect.EQ(t, records[0].Start(), 10)
	expect.EQ(t, records[0].End(), 40)
	expect.EQ(t, records[0].Name(), "2")
}

func TestRunFeatures(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	inPath := writeFile(t, tempDir, "in.bed", inputBED)
	outPath := filepath.Join(tempDir, "out.bed")

	opts := DefaultOpts
	opts.FeaturesPath = writeFile(t, tempDir, "features.bed", "chr1\t30\t60\tgeneA\t0\t+\n")
	lines := run(t, inPath, outPath, opts)
	expect.EQ(t, lines, []string{
		"geneA\t0\t20\tgeneA\t0\t+\t20\t20\t0,0,0\t1\t20,\t0,",
		"geneA\t10\t30\tgeneA\t0\t+\t30\t30\t0,0,0\t1\t20,\t0,",
	})
}

func TestRunErrors(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	outPath := filepath.Join(tempDir, "out.bedgraph")
	ctx := vcontext.Background()

	unsorted := writeFile(t, tempDir, "unsorted.bed", "chr1\t50\t60\nchr1\t0\t10\n")
	opts := DefaultOpts
	expect.True(t, errors.Is(errors.Precondition, Run(ctx, unsorted, outPath, &opts)))

	inPath := writeFile(t, tempDir, "in.bed", inputBED)
	opts.WindowSize = 0
	expect.True(t, errors.Is(errors.Invalid, Run(ctx, inPath, outPath, &opts)))

	opts = DefaultOpts
	opts.Region = "chr1:100-50"
	expect.True(t, Run(ctx, inPath, outPath, &opts) != nil)

	opts = DefaultOpts
	expect.True(t, Run(ctx, filepath.Join(tempDir, "missing.bed"), outPath, &opts) != nil)
}

func TestRunBAM(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	chr1, err := sam.NewReference("chr1", "", "", 1000, nil, nil)
	require.NoError(t, err)
	header, err := sam.NewHeader(nil, []*sam.Reference{chr1})
	require.NoError(t, err)
	cigar, err := sam.ParseCigar([]byte("10M"))
	require.NoError(t, err)

	inPath := filepath.Join(tempDir, "in.bam")
	f, err := os.Create(inPath)
	require.NoError(t, err)
	w, err := bam.NewWriter(f, header, 1)
	require.NoError(t, err)
	for _, name := range []string{"r1", "r2"} {
		r := sam.GetFromFreePool()
		r.Name = name
		r.Ref = chr1
		r.Pos = 0
		r.MatePos = -1
		r.Cigar = cigar
		require.NoError(t, w.Write(r))
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	opts := DefaultOpts
	opts.WindowSize = 5
	opts.MinCount = 2
	lines := run(t, inPath, filepath.Join(tempDir, "out.bedgraph"), opts)
	require.Equal(t, 10, len(lines))
	expect.EQ(t, lines[0], "chr1\t0\t5\t2")
	expect.EQ(t, lines[9], "chr1\t9\t14\t2")
}
