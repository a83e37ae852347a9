package pcapscan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/endorses/strsearch/internal/pkg/ahocorasick"
	"github.com/endorses/strsearch/internal/pkg/cmdutil"
	"github.com/endorses/strsearch/internal/pkg/logger"
	"github.com/endorses/strsearch/internal/pkg/metrics"
	"github.com/endorses/strsearch/internal/pkg/output"
	"github.com/endorses/strsearch/internal/pkg/pcap"
	"github.com/endorses/strsearch/internal/pkg/signals"
	"github.com/spf13/cobra"
)

// PcapCmd searches the application-layer payloads of a capture file.
var PcapCmd = &cobra.Command{
	Use:   "pcap FILE",
	Short: "Search packet payloads in a PCAP file",
	Long: `Search the application-layer payload of every packet in a classic PCAP
file for a set of patterns. Frames without a TCP or UDP payload are skipped.

With --anchored, "abc*" only matches at the start of a payload and "*abc"
only at its end. Packets with at least one match can be saved with --write.

Examples:
  strsearch pcap -e INVITE -e BYE sip.pcap
  strsearch pcap -f keywords.txt -i capture.pcap -o json
  strsearch pcap -e "GET /admin*" --anchored --write admin.pcap web.pcap`,
	Args:    cobra.ExactArgs(1),
	PreRunE: bindFlags,
	RunE:    runPcap,
}

var (
	patterns        []string
	patternsFile    string
	caseInsensitive bool
	anchored        bool
	dense           bool
	writeFile       string
)

// Result is one occurrence of a pattern in a packet payload.
type Result struct {
	Packet    int       `json:"packet" yaml:"packet"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Flow      string    `json:"flow,omitempty" yaml:"flow,omitempty"`
	Pattern   string    `json:"pattern" yaml:"pattern"`
	PatternID int       `json:"pattern_id" yaml:"pattern_id"`
	Start     int       `json:"start" yaml:"start"`
	End       int       `json:"end" yaml:"end"`
}

// Summary describes one run over a capture.
type Summary struct {
	Packets        int `json:"packets" yaml:"packets"`
	Skipped        int `json:"skipped" yaml:"skipped"`
	MatchedPackets int `json:"matched_packets" yaml:"matched_packets"`
	Matches        int `json:"matches" yaml:"matches"`
}

func bindFlags(cmd *cobra.Command, args []string) error {
	return cmdutil.BindFlags(cmd, map[string]string{
		"case_insensitive": "ignore-case",
	})
}

func runPcap(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(cmdutil.GetStringConfig("output", string(output.FormatText)))
	if err != nil {
		return err
	}

	set, err := cmdutil.LoadPatterns(patterns, patternsFile, anchored)
	if err != nil {
		return err
	}
	config := ahocorasick.Config{CaseInsensitive: cmdutil.GetBoolConfig("case_insensitive", caseInsensitive)}
	m, err := ahocorasick.BuildMatcher(set, config, dense)
	if err != nil {
		return err
	}

	reader, err := pcap.Open(args[0])
	if err != nil {
		return err
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil {
			logger.Warn("failed to close capture", "file", args[0], "error", cerr)
		}
	}()

	var writer *pcap.Writer
	if writeFile != "" {
		writerConfig := pcap.DefaultConfig()
		writerConfig.FilePath = writeFile
		writerConfig.LinkType = reader.LinkType()
		if writer, err = pcap.NewWriter(writerConfig); err != nil {
			return err
		}
		defer func() {
			if cerr := writer.Close(); cerr != nil {
				logger.Error("failed to close output capture", "file", writeFile, "error", cerr)
			}
		}()
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	cleanup := signals.SetupHandler(ctx, cancel)
	defer cleanup()

	results, summary, err := scanCapture(ctx, reader, m, set, writer)
	if err != nil {
		return err
	}

	logger.Info("capture searched",
		"file", args[0],
		"packets", summary.Packets,
		"skipped", summary.Skipped,
		"matched_packets", summary.MatchedPackets,
		"matches", summary.Matches)

	return output.Write(cmd.OutOrStdout(), format, results, func(w io.Writer) error {
		for _, r := range results {
			if _, err := fmt.Fprintf(w, "#%d %s %s %d-%d\t%s\n",
				r.Packet, r.Timestamp.UTC().Format(time.RFC3339Nano), r.Flow, r.Start, r.End, r.Pattern); err != nil {
				return err
			}
		}
		return nil
	})
}

// scanCapture matches every payload in the capture. Packets with a match are
// copied to writer when it is not nil.
func scanCapture(ctx context.Context, reader *pcap.Reader, m ahocorasick.Matcher, set []ahocorasick.Pattern, writer *pcap.Writer) ([]Result, Summary, error) {
	results := make([]Result, 0)
	var summary Summary
	var scanned int

	for {
		if err := ctx.Err(); err != nil {
			return nil, summary, err
		}
		pkt, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, summary, err
		}
		summary.Packets++
		scanned += len(pkt.Payload)

		matches := m.Scan(pkt.Payload)
		if len(matches) == 0 {
			continue
		}
		summary.MatchedPackets++
		summary.Matches += len(matches)
		for _, match := range matches {
			results = append(results, Result{
				Packet:    pkt.Index,
				Timestamp: pkt.CaptureInfo.Timestamp,
				Flow:      pkt.Flow,
				Pattern:   set[match.PatternIndex].Text,
				PatternID: match.PatternID,
				Start:     match.Start,
				End:       match.End,
			})
		}
		if writer != nil {
			if err := writer.WritePacket(pkt.CaptureInfo, pkt.Data); err != nil {
				return nil, summary, err
			}
		}
	}

	summary.Skipped = reader.Skipped()
	metrics.RecordScan(ahocorasick.MetricsLabel, scanned, summary.Matches)
	return results, summary, nil
}

func init() {
	PcapCmd.Flags().StringArrayVarP(&patterns, "pattern", "e", nil, "pattern to search for (repeatable)")
	PcapCmd.Flags().StringVarP(&patternsFile, "patterns-file", "f", "", "file with one pattern per line")
	PcapCmd.Flags().BoolVarP(&caseInsensitive, "ignore-case", "i", false, "fold ASCII case in patterns and payloads")
	PcapCmd.Flags().BoolVar(&anchored, "anchored", false, `treat "abc*" as a payload prefix and "*abc" as a payload suffix`)
	PcapCmd.Flags().BoolVar(&dense, "dense", false, "use a table-driven automaton (faster scans, 1 KiB per state)")
	PcapCmd.Flags().StringVarP(&writeFile, "write", "w", "", "save packets with at least one match to this PCAP file")
}
