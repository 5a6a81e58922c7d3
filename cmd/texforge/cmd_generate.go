package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docly-ai/texforge/internal/dsf"
	"github.com/docly-ai/texforge/internal/latex/pdf"
	generateuc "github.com/docly-ai/texforge/internal/usecase/generate"
)

var (
	genRequest  string
	genFormPath string
	genDocType  string
	genKeywords []string
	genTopK     int
	genTemplate string
	genStrict   bool
	genOutPath  string
	genCompile  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a LaTeX document from a request",
	Long:  "Retrieves similar corpus examples, prompts the model and writes the\nsanitized LaTeX output to a .tex file.",
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&genRequest, "request", "r", "", "free-form document request")
	generateCmd.Flags().StringVar(&genFormPath, "form", "", "document structure form (JSON); overrides --request")
	generateCmd.Flags().StringVar(&genDocType, "doc-type", "", "document type filter for retrieval")
	generateCmd.Flags().StringSliceVar(&genKeywords, "keywords", nil, "keyword filters for retrieval")
	generateCmd.Flags().IntVar(&genTopK, "top-k", 0, "number of examples to retrieve; 0 uses config")
	generateCmd.Flags().StringVar(&genTemplate, "template", "", "document template name")
	generateCmd.Flags().BoolVar(&genStrict, "strict", false, "fail unless the output is a single complete document")
	generateCmd.Flags().StringVarP(&genOutPath, "out", "o", "", "output .tex path; overrides config")
	generateCmd.Flags().BoolVar(&genCompile, "compile", false, "run pdflatex over the output")
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if genRequest == "" && genFormPath == "" {
		return fmt.Errorf("provide --request or --form")
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	var form *dsf.Form
	if genFormPath != "" {
		f, err := dsf.Load(genFormPath)
		if err != nil {
			return fmt.Errorf("load form: %w", err)
		}
		form = &f
	}

	svc, _, err := a.generateService()
	if err != nil {
		return err
	}

	topK := genTopK
	if topK == 0 {
		topK = a.cfg.Retrieval.TopK
	}

	out, err := svc.Generate(ctx, generateuc.Request{
		UserRequest: genRequest,
		Form:        form,
		DocType:     genDocType,
		Keywords:    genKeywords,
		TopK:        topK,
		Template:    genTemplate,
		Strict:      genStrict,
	})
	if err != nil {
		return err
	}

	outPath := genOutPath
	if outPath == "" {
		outPath = a.cfg.Output.TexPath
	}
	if err := writeTex(outPath, out.Tex); err != nil {
		return err
	}

	fmt.Printf("Wrote %s (examples: %s)\n", outPath, strings.Join(out.ExampleIDs, ", "))

	if genCompile {
		if err := pdf.Compile(ctx, out.Tex, outPath); err != nil {
			if errors.Is(err, pdf.ErrCompilerNotFound) {
				a.logger.Warn("pdflatex not installed, skipping compile")
				return nil
			}
			return fmt.Errorf("compile: %w", err)
		}
		fmt.Println("Compiled PDF next to the .tex output")
	}
	return nil
}

func writeTex(path, tex string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(tex), 0o644); err != nil {
		return fmt.Errorf("write tex output: %w", err)
	}
	return nil
}
