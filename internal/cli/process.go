package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ironsheep/image-brightness/internal/config"
	"github.com/ironsheep/image-brightness/internal/imaging"
	"github.com/ironsheep/image-brightness/internal/pipeline"
	"github.com/ironsheep/image-brightness/internal/web"
)

type processOptions struct {
	in         string
	brightness int
	channels   []string
	out        string
	id         string
	asJSON     bool
}

// processReport is the machine-readable output of the process command.
type processReport struct {
	ID             string               `json:"id"`
	Dir            string               `json:"dir"`
	Brightness     int                  `json:"brightness"`
	Channels       []string             `json:"channels"`
	Files          []string             `json:"files"`
	OriginalColors []imaging.ColorCount `json:"original_colors"`
	ModifiedColors []imaging.ColorCount `json:"modified_colors"`
	ElapsedMS      int64                `json:"elapsed_ms"`
}

func newProcessCmd(g *globalOptions) *cobra.Command {
	o := &processOptions{}
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Adjust one image and write the comparison artifacts",
		Long: `Run the pipeline once on a local file. The original and adjusted images and
both distribution charts are written to <out>/<id>/. The top colors are
printed as a table on a terminal and as JSON otherwise.

Examples:
  image-brightness process --in photo.jpg --brightness 40 --channels red
  image-brightness process --in photo.png --brightness -30 --channels red,blue --out results --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}
			override(cmd.Flags(), "out", &cfg.UploadDir, o.out)
			if err := validate(cfg); err != nil {
				return err
			}
			return runProcess(cmd, cfg, o)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&o.in, "in", "i", "", "input image (.png, .jpg, .jpeg, .gif, .webp)")
	flags.IntVarP(&o.brightness, "brightness", "b", 0, "amount added to each selected channel")
	flags.StringSliceVar(&o.channels, "channels", nil, "channels to adjust (red, green, blue)")
	flags.StringVarP(&o.out, "out", "o", "", "output directory (default from config upload_dir)")
	flags.StringVar(&o.id, "id", "", "request id naming the output subdirectory (default random)")
	flags.BoolVar(&o.asJSON, "json", false, "print JSON even on a terminal")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func runProcess(cmd *cobra.Command, cfg *config.Config, o *processOptions) error {
	logger := rootLogger(cfg)

	channels, err := imaging.ParseChannels(o.channels)
	if err != nil {
		return err
	}

	id := o.id
	if id == "" {
		if id, err = web.NewRequestID(); err != nil {
			return err
		}
	} else if !web.ValidRequestID(id) {
		return fmt.Errorf("invalid --id %q: want 32 hex characters", id)
	}

	img, err := imaging.NewImageCache().Load(o.in)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", o.in, err)
	}

	processor, _, err := newProcessor(cfg, logger)
	if err != nil {
		return err
	}
	res, err := processor.Process(cmd.Context(), pipeline.Request{
		ID:       id,
		Image:    img,
		Delta:    o.brightness,
		Channels: channels,
	})
	if err != nil {
		return err
	}

	store, err := web.NewArtifactStore(cfg.UploadDir, logger.Named("store"))
	if err != nil {
		return err
	}
	art, err := store.Save(res)
	if err != nil {
		return err
	}

	report := processReport{
		ID:             art.ID,
		Dir:            filepath.Join(store.Dir(), art.ID),
		Brightness:     res.Delta,
		Channels:       res.Channels.Names(),
		Files:          []string{art.OriginalImage, art.ModifiedImage, art.OriginalPlot, art.ModifiedPlot},
		OriginalColors: res.OriginalColors,
		ModifiedColors: res.ModifiedColors,
		ElapsedMS:      res.Elapsed.Milliseconds(),
	}

	out := cmd.OutOrStdout()
	if o.asJSON || !isTerminal(out) {
		return writeJSON(out, report)
	}
	return writeTable(out, report, res.Elapsed)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(w io.Writer, r processReport, elapsed time.Duration) error {
	fmt.Fprintf(w, "Request %s: brightness %d on %v in %s\n", r.ID, r.Brightness, r.Channels, elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "Artifacts in %s\n\n", r.Dir)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tORIGINAL\tCOUNT\tMODIFIED\tCOUNT")
	for i := 0; i < max(len(r.OriginalColors), len(r.ModifiedColors)); i++ {
		oc, on := colorCell(r.OriginalColors, i)
		mc, mn := colorCell(r.ModifiedColors, i)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, oc, on, mc, mn)
	}
	return tw.Flush()
}

func colorCell(colors []imaging.ColorCount, i int) (string, string) {
	if i >= len(colors) {
		return "", ""
	}
	c := colors[i]
	return c.Color.Hex() + " " + c.Color.String(), fmt.Sprint(c.Count)
}
