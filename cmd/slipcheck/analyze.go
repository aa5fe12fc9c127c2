package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/repository"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/service"
)

var analyzeFile string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one slip and print the run",
	Long: `Reads a slip from --file or stdin and prints the completed run as JSON.
Input may be raw slip text or a JSON request body with slipText, legs and trustedContext.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			raw []byte
			err error
		)
		if analyzeFile != "" && analyzeFile != "-" {
			raw, err = os.ReadFile(analyzeFile)
		} else {
			raw, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return fmt.Errorf("failed to read slip: %w", err)
		}

		in, err := parseSlipInput(raw)
		if err != nil {
			return err
		}

		enricher, _ := buildEnricher(cfg, log)
		svc := service.NewRunService(
			repository.NewMemoryRunRepository(),
			enricher,
			service.WithLogger(log),
			service.WithPanicOnInvariant(cfg.Debug.PanicOnInvariant),
		)
		run, err := svc.RunSlip(cmd.Context(), in)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "Slip file (default stdin)")
}

// parseSlipInput accepts a JSON request body or plain slip text
func parseSlipInput(raw []byte) (service.SlipInput, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var in service.SlipInput
		if err := json.Unmarshal(trimmed, &in); err != nil {
			return service.SlipInput{}, fmt.Errorf("invalid JSON slip: %w", err)
		}
		return in, nil
	}
	return service.SlipInput{RawText: string(raw)}, nil
}
