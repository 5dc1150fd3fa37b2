// Command ltlclean runs the LTL cleaning pipeline over order exports on disk.
//
//	ltlclean -ref LTL_qty.xlsx -out LTL_Cleaned.xlsx [-pdf load.pdf] export1.xlsx [export2.xls ...]
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"ltlcleaner/infrastructure/config"
	"ltlcleaner/infrastructure/loadsheet"
	"ltlcleaner/infrastructure/logging"
	"ltlcleaner/infrastructure/ltl"
	"ltlcleaner/infrastructure/reference"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()
	logging.Setup(stderr, cfg.LogLevel, cfg.LogFormat)
	cfg.LogWarnings()

	fs := flag.NewFlagSet("ltlclean", flag.ContinueOnError)
	fs.SetOutput(stderr)
	refPath := fs.String("ref", cfg.ReferencePath, "LTL reference workbook (SAP Code, LTL Qty, Case_Pallet)")
	outPath := fs.String("out", ltl.OutputFileName, "cleaned workbook to write")
	pdfPath := fs.String("pdf", "", "optional pallet load sheet PDF to write")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: ltlclean [-ref file] [-out file] [-pdf file] export.xlsx [export2.xls ...]")
		return 2
	}

	refRows, err := reference.NewLoader(*refPath).Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	uploads, closeAll, err := openInputs(fs.Args())
	defer closeAll()
	if err != nil {
		fmt.Fprintln(stderr, ltl.AsError(err))
		return 1
	}

	out := ltl.Process(uploads, refRows)
	if !out.OK() {
		fmt.Fprintln(stderr, out.Err)
		return 1
	}

	var workbook bytes.Buffer
	if err := ltl.WriteWorkbook(&workbook, out.Orders); err != nil {
		fmt.Fprintf(stderr, "write workbook: %v\n", err)
		return 1
	}
	if err := os.WriteFile(*outPath, workbook.Bytes(), 0o644); err != nil {
		fmt.Fprintf(stderr, "write %s: %v\n", *outPath, err)
		return 1
	}

	if *pdfPath != "" && len(out.Orders) > 0 {
		pdf, err := loadsheet.Render(out.Orders, time.Now())
		if err != nil {
			fmt.Fprintf(stderr, "render load sheet: %v\n", err)
			return 1
		}
		if err := os.WriteFile(*pdfPath, pdf, 0o644); err != nil {
			fmt.Fprintf(stderr, "write %s: %v\n", *pdfPath, err)
			return 1
		}
	}

	printStats(stdout, out.Result, *outPath)
	if out.Warning != nil {
		fmt.Fprintf(stderr, "warning: %s\n", out.Warning.Message)
	}
	return 0
}

func openInputs(paths []string) ([]ltl.Upload, func(), error) {
	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}
	uploads := make([]ltl.Upload, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, closeAll, &ltl.Error{Kind: ltl.KindMalformedInput, Source: filepath.Base(p), Message: "cannot open file", Err: err}
		}
		files = append(files, f)
		uploads = append(uploads, ltl.Upload{Name: filepath.Base(p), Body: f})
	}
	return uploads, closeAll, nil
}

func printStats(w io.Writer, res ltl.Result, outPath string) {
	s := res.Stats
	fmt.Fprintf(w, "files:           %d\n", s.Files)
	fmt.Fprintf(w, "order lines:     %d\n", s.InputLines)
	fmt.Fprintf(w, "no reference:    %d\n", s.UnmatchedLines)
	fmt.Fprintf(w, "purchase orders: %d\n", s.Groups)
	fmt.Fprintf(w, "below LTL qty:   %d\n", s.BelowThreshold)
	fmt.Fprintf(w, "LTL orders:      %d (%d pallets)\n", s.Orders, loadsheet.TotalPallets(res.Orders))
	fmt.Fprintf(w, "written:         %s\n", outPath)
}
