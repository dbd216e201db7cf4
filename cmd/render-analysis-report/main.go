package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/tiptopassets/analysis-engine/internal/contracts"
	"github.com/tiptopassets/analysis-engine/internal/report"
)

func main() {
	inputPath := flag.String("input", "", "Path to saved analysis response JSON")
	outputPath := flag.String("output", "", "Path to write markdown (defaults to stdout)")
	pdfPath := flag.String("pdf", "", "Optional path to write a PDF rendering")
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("missing required -input")
	}

	in, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("read input: %v", err)
	}

	var res contracts.AnalyzeResponse
	if err := json.Unmarshal(in, &res); err != nil {
		log.Fatalf("decode input JSON: %v", err)
	}

	markdown := report.BuildMarkdown(res)
	if err := writeMarkdown(*outputPath, markdown); err != nil {
		log.Fatalf("write markdown: %v", err)
	}

	if *pdfPath != "" {
		renderer := report.NewChromiumPDFRenderer()
		pdf, err := renderer.Render(context.Background(), res)
		if err != nil {
			log.Fatalf("render pdf: %v", err)
		}
		if err := os.WriteFile(*pdfPath, pdf, 0o644); err != nil {
			log.Fatalf("write pdf: %v", err)
		}
	}
}

func writeMarkdown(outputPath, markdown string) error {
	if outputPath == "" {
		_, err := fmt.Print(markdown)
		return err
	}
	return os.WriteFile(outputPath, []byte(markdown), 0o644)
}
