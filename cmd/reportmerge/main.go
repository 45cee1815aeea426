// Package main provides the CLI entry point for reportmerge.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piramie/reportmerge/pkg/reportmerge"
	"github.com/piramie/reportmerge/pkg/reportmerge/writer"
)

var (
	masterPath  string
	monthlyPath string
	outputPath  string
	masterSheet string
	headerRow   int
	noSummary   bool
)

func main() {
	setupEnvironment()

	rootCmd := &cobra.Command{
		Use:   "reportmerge",
		Short: "Consolidate monthly purchase reports into a master workbook",
		Long: `reportmerge appends monthly purchase reports into a master workbook
without duplicating rows, backs the master up before every write, and
builds grouped summary workbooks from it.`,
		SilenceUsage: true,
	}

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Build summary views from the existing master (no ingestion)",
		RunE:  runSummary,
	}
	addCommonFlags(summaryCmd)

	ingestCmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest a monthly report into the master, then build summaries",
		RunE:  runIngest,
	}
	addCommonFlags(ingestCmd)
	ingestCmd.Flags().StringVarP(&monthlyPath, "monthly", "r", "", "Monthly report path (.xlsx/.xls)")
	ingestCmd.Flags().IntVar(&headerRow, "header-row", 0, "Monthly header row (0 = stock row 4, -1 = locate automatically)")
	ingestCmd.Flags().BoolVar(&noSummary, "no-summary", false, "Skip summary building after ingestion")
	ingestCmd.MarkFlagRequired("monthly")

	rootCmd.AddCommand(summaryCmd, ingestCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&masterPath, "master", "m", "", "Master workbook path (.xlsx/.xlsm)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Summary workbook output path (default: <master dir>/summaries.xlsx)")
	cmd.Flags().StringVar(&masterSheet, "sheet", "", "Master sheet name")
	cmd.MarkFlagRequired("master")
}

func buildOptions() reportmerge.Options {
	opts := reportmerge.DefaultOptions()
	opts.BackupDir = getEnvWithDefault("REPORTMERGE_BACKUP_DIR", "")
	if sheet := getEnvWithDefault("REPORTMERGE_SHEET", ""); sheet != "" {
		opts.MasterSheet = sheet
	}
	if masterSheet != "" {
		opts.MasterSheet = masterSheet
	}
	switch {
	case headerRow > 0:
		opts.MonthlyHeaderRow = headerRow
	case headerRow < 0:
		// auto-locate
		opts.MonthlyHeaderRow = 0
	}
	return opts
}

func validateMaster(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return nil
	}
	return fmt.Errorf("master must be .xlsx or .xlsm: %s", path)
}

func validateMonthly(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return nil
	}
	return fmt.Errorf("monthly report must be .xlsx or .xls: %s", path)
}

func runSummary(cmd *cobra.Command, args []string) error {
	if err := validateMaster(masterPath); err != nil {
		return err
	}
	return buildSummaries(buildOptions())
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := validateMaster(masterPath); err != nil {
		return err
	}
	if err := validateMonthly(monthlyPath); err != nil {
		return err
	}

	opts := buildOptions()
	pipeline := reportmerge.NewPipeline(opts)
	result, err := pipeline.Ingest(masterPath, monthlyPath)
	if err != nil {
		return err
	}

	fmt.Printf("Rows appended:        %d\n", result.RowsAppended)
	fmt.Printf("Duplicates skipped:   %d\n", result.RowsSkippedAsDuplicate)
	if result.RowsSkippedMalformed > 0 {
		fmt.Printf("Malformed skipped:    %d\n", result.RowsSkippedMalformed)
	}
	fmt.Printf("Rows before / after:  %d / %d\n", result.RowsBefore, result.RowsAfter)
	fmt.Printf("Backup:               %s\n", result.BackupPath)
	if len(result.UnmappedColumns) > 0 {
		fmt.Printf("Unmapped columns:     %s\n", strings.Join(result.UnmappedColumns, ", "))
	}

	if noSummary {
		return nil
	}
	return buildSummaries(opts)
}

func buildSummaries(opts reportmerge.Options) error {
	table, err := reportmerge.LoadMaster(masterPath, opts)
	if err != nil {
		return err
	}

	out := outputPath
	if out == "" {
		out = filepath.Join(filepath.Dir(masterPath), "summaries.xlsx")
	}
	if err := writer.WriteSummaries(out, reportmerge.Summaries(table, nil)); err != nil {
		return err
	}
	fmt.Printf("Summaries written:    %s\n", out)
	return nil
}
