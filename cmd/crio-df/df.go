package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/containers/common/pkg/report"
	"github.com/containers/storage/pkg/unshare"
	"github.com/docker/go-units"
	multierror "github.com/hashicorp/go-multierror"
	jsoniter "github.com/json-iterator/go"
	"github.com/opencontainers/go-digest"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/containers/crio-df/libstore"
	"github.com/containers/crio-df/libstore/define"
)

// Pull in configured json library
var json = jsoniter.ConfigCompatibleWithStandardLibrary

var dfOptions = struct {
	graphRoot   string
	graphDriver string
	configPath  string
	verbose     bool
	format      string
}{}

func dfFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.BoolVarP(&dfOptions.verbose, "verbose", "v", false, "Show detailed information on space usage")

	formatFlagName := "format"
	flags.StringVar(&dfOptions.format, formatFlagName, "", "Pretty-print disk usage using a Go template")
	_ = cmd.RegisterFlagCompletionFunc(formatFlagName, cobra.NoFileCompletions)
}

func df(cmd *cobra.Command, args []string) error {
	if dfOptions.verbose && cmd.Flags().Changed("format") {
		return errors.New("cannot combine --verbose and --format options")
	}
	if unshare.IsRootless() {
		return errors.New("crio-df must be run as root to read the storage graph root")
	}

	options, err := libstore.DefaultStoreOptions(dfOptions.configPath)
	if err != nil {
		return err
	}
	if dfOptions.graphRoot != "" {
		options.GraphRoot = dfOptions.graphRoot
	}
	if dfOptions.graphDriver != "" {
		options.GraphDriverName = dfOptions.graphDriver
	}

	store := libstore.New(options)
	data, warnings := store.Load()
	logWarnings(warnings)
	reply := libstore.DiskUsage(store, data)

	switch {
	case report.IsJSON(dfOptions.format):
		return printJSON(reply)
	case cmd.Flags().Changed("format"):
		return printSummary(cmd, reply, dfOptions.format)
	case dfOptions.verbose:
		return printVerbose(cmd, reply)
	default:
		return printSummary(cmd, reply, "")
	}
}

// logWarnings surfaces the loader's non-fatal problems without
// stopping the report.
func logWarnings(err error) {
	if err == nil {
		return
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, e := range merr.Errors {
			logrus.Warn(e)
		}
		return
	}
	logrus.Warn(err)
}

func printJSON(reply *define.DiskUsageReport) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "    ")
	return enc.Encode(reply)
}

func printSummary(cmd *cobra.Command, reply *define.DiskUsageReport, userFormat string) error {
	summaries := []dfSummary{
		{
			Type:        "Images",
			Total:       reply.TotalImages,
			Active:      reply.ActiveImages,
			size:        reply.Size,
			reclaimable: reply.Reclaimable,
			pct:         reply.ReclaimablePercent,
		},
		{
			// Container writable layer sizes are not recorded in the
			// store metadata, so they report as zero.
			Type:   "Containers",
			Total:  reply.TotalContainers,
			Active: reply.ActiveContainers,
		},
		{Type: "Local Volumes"},
	}

	rpt := report.New(os.Stdout, cmd.Name())
	defer rpt.Flush()

	var err error
	if userFormat != "" {
		rpt, err = rpt.Parse(report.OriginUser, userFormat)
	} else {
		row := "{{range .}}{{.Type}}\t{{.Total}}\t{{.Active}}\t{{.Size}}\t{{.Reclaimable}}\n{{end -}}"
		rpt, err = rpt.Parse(report.OriginPodman, row)
	}
	if err != nil {
		return err
	}

	if rpt.RenderHeaders {
		hdrs := report.Headers(dfSummary{}, map[string]string{
			"Size":        "SIZE",
			"Reclaimable": "RECLAIMABLE",
		})
		if err := rpt.Execute(hdrs); err != nil {
			return err
		}
	}
	return rpt.Execute(summaries)
}

func printVerbose(cmd *cobra.Command, reply *define.DiskUsageReport) error {
	fmt.Print("Images space usage:\n\n")

	images := make([]dfImage, 0, len(reply.Images))
	for _, usage := range reply.Images {
		images = append(images, dfImage{*usage})
	}
	sort.Slice(images, func(i, j int) bool {
		return images[i].ImageDiskUsage.Size > images[j].ImageDiskUsage.Size
	})

	rpt := report.New(os.Stdout, cmd.Name())
	row := "{{range .}}{{.Repository}}\t{{.Tag}}\t{{.ImageID}}\t{{.Created}}\t{{.Size}}\t{{.SharedSize}}\t{{.UniqueSize}}\t{{.Containers}}\n{{end -}}"
	rpt, err := rpt.Parse(report.OriginPodman, row)
	if err != nil {
		return err
	}
	if rpt.RenderHeaders {
		hdrs := report.Headers(dfImage{}, map[string]string{
			"ImageID":    "IMAGE ID",
			"Size":       "SIZE",
			"SharedSize": "SHARED SIZE",
			"UniqueSize": "UNIQUE SIZE",
		})
		if err := rpt.Execute(hdrs); err != nil {
			return err
		}
	}
	if err := rpt.Execute(images); err != nil {
		return err
	}
	rpt.Flush()

	if err := printContainers(cmd, reply); err != nil {
		return err
	}
	printVolumes()
	printCompressed(images)
	printStorageSummary(reply)
	return nil
}

// containerRowLimit caps the verbose containers table.
const containerRowLimit = 10

func printContainers(cmd *cobra.Command, reply *define.DiskUsageReport) error {
	fmt.Print("\nContainers space usage:\n\n")

	containers := make([]dfContainer, 0, len(reply.Containers))
	for _, usage := range reply.Containers {
		if len(containers) == containerRowLimit {
			break
		}
		containers = append(containers, dfContainer{*usage})
	}

	rpt := report.New(os.Stdout, cmd.Name())
	defer rpt.Flush()
	row := "{{range .}}{{.ContainerID}}\t{{.Image}}\t{{.Command}}\t{{.LocalVolumes}}\t{{.Size}}\t{{.Created}}\t{{.Status}}\t{{.Names}}\n{{end -}}"
	rpt, err := rpt.Parse(report.OriginPodman, row)
	if err != nil {
		return err
	}
	if rpt.RenderHeaders {
		hdrs := report.Headers(dfContainer{}, map[string]string{
			"ContainerID":  "CONTAINER ID",
			"Image":        "IMAGE",
			"Command":      "COMMAND",
			"LocalVolumes": "LOCAL VOLUMES",
			"Size":         "SIZE",
			"Created":      "CREATED",
			"Status":       "STATUS",
			"Names":        "NAMES",
		})
		if err := rpt.Execute(hdrs); err != nil {
			return err
		}
	}
	return rpt.Execute(containers)
}

// printVolumes writes the volumes section headers. No volume metadata
// lives in the storage graph root, so the section never has rows.
func printVolumes() {
	fmt.Print("\nLocal Volumes space usage:\n\n")
	fmt.Printf("%-30s %-10s %s\n", "VOLUME NAME", "LINKS", "SIZE")
}

// printCompressed writes the download-size section: one line per image
// that has a cached manifest, with its compressed layers indented
// below it, shared digests marked with an asterisk.
func printCompressed(images []dfImage) {
	compressed := make([]dfImage, 0, len(images))
	for _, img := range images {
		if img.Compressed != nil {
			compressed = append(compressed, img)
		}
	}
	if len(compressed) == 0 {
		return
	}
	sort.Slice(compressed, func(i, j int) bool {
		return compressed[i].Compressed.Size > compressed[j].Compressed.Size
	})

	fmt.Print("\nCompressed download sizes:\n\n")
	for _, img := range compressed {
		fmt.Printf("%s  %10s  %s\n", img.ImageID(), humanSize(img.Compressed.Size), img.Repository)
		for _, layer := range img.Compressed.Layers {
			marker := ""
			if layer.Shared {
				marker = " *"
			}
			fmt.Printf("  %s  %10s%s\n", truncDigest(layer.Digest), humanSize(layer.Size), marker)
		}
	}
}

func printStorageSummary(reply *define.DiskUsageReport) {
	fmt.Print("\nStorage summary:\n")
	fmt.Printf("  Total images: %d\n", reply.TotalImages)
	fmt.Printf("  Images with containers: %d\n", reply.ActiveImages)
	fmt.Printf("  Total unique layers: %d\n", reply.TotalLayers)
	fmt.Printf("  Shared layers (used by >1 image): %d\n", reply.SharedLayers)
	fmt.Printf("  Total storage used: %s\n", humanSize(reply.Size))
	fmt.Printf("  Reclaimable space: %s (%.0f%%)\n", humanSize(reply.Reclaimable), reply.ReclaimablePercent)
	fmt.Printf("  Compressed download size: %s\n", humanSize(reply.DeduplicatedCompressed))
	if reply.DeduplicatedCompressed > 0 {
		fmt.Printf("  Compression ratio: %.1f:1\n", float64(reply.Size)/float64(reply.DeduplicatedCompressed))
	}
}

// humanSize formats byte counts in decimal (SI) units, matching podman
// output.
func humanSize(size int64) string {
	return units.HumanSizeWithPrecision(float64(size), 3)
}

func truncDigest(d digest.Digest) string {
	s := d.String()
	if len(s) > 19 {
		return s[:19] + "..."
	}
	return s
}

func truncID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// dfImage wraps an image usage entry with the string formatting the
// table template expects.
type dfImage struct {
	define.ImageDiskUsage
}

func (i dfImage) ImageID() string {
	return truncID(i.ID)
}

func (i dfImage) Created() string {
	if i.ImageDiskUsage.Created.IsZero() {
		return "unknown"
	}
	return units.HumanDuration(time.Since(i.ImageDiskUsage.Created)) + " ago"
}

func (i dfImage) Size() string {
	return humanSize(i.ImageDiskUsage.Size)
}

func (i dfImage) SharedSize() string {
	return humanSize(i.ImageDiskUsage.SharedSize)
}

func (i dfImage) UniqueSize() string {
	return humanSize(i.ImageDiskUsage.UniqueSize)
}

// dfContainer formats one containers-table row. The store metadata
// records neither run state nor per-container sizes, so those columns
// report N/A.
type dfContainer struct {
	define.ContainerDiskUsage
}

func (c dfContainer) ContainerID() string {
	return truncID(c.ID)
}

func (c dfContainer) Image() string {
	if c.ImageID == "" {
		return "N/A"
	}
	return truncID(c.ImageID)
}

func (c dfContainer) Command() string {
	return "N/A"
}

func (c dfContainer) LocalVolumes() int {
	return 0
}

func (c dfContainer) Size() string {
	return "N/A"
}

func (c dfContainer) Created() string {
	return "N/A"
}

func (c dfContainer) Status() string {
	return "N/A"
}

func (c dfContainer) Names() string {
	return "N/A"
}

type dfSummary struct {
	Type        string
	Total       int
	Active      int
	size        int64
	reclaimable int64
	pct         float64
}

func (d dfSummary) Size() string {
	return humanSize(d.size)
}

func (d dfSummary) Reclaimable() string {
	return fmt.Sprintf("%s (%.0f%%)", humanSize(d.reclaimable), d.pct)
}
