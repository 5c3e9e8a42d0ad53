package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from documents",
	Long: `Load one or more documents and answer a question using only the chunks
most relevant to it.

Supported formats: .txt, .md, .html, .docx, .pdf

Examples:
  ctxwin ask -f handbook.pdf "How many vacation days do I get?"
  ctxwin ask -f a.md -f b.docx --context "release process"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringSliceP("file", "f", nil, "document to load (repeatable)")
	askCmd.Flags().Bool("context", false, "print the assembled context instead of generating an answer")
	askCmd.Flags().Bool("json", false, "print the answer as JSON")
	_ = askCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	files, _ := cmd.Flags().GetStringSlice("file")
	contextOnly, _ := cmd.Flags().GetBool("context")
	asJSON, _ := cmd.Flags().GetBool("json")
	question := strings.Join(args, " ")

	if err := loadDocuments(cmd, files); err != nil {
		return err
	}

	if contextOnly {
		assembled, err := documentService.AssembleContext(cmd.Context(), question)
		if err != nil {
			return err
		}
		printAssembledContext(cmd, assembled)
		return nil
	}

	answer, err := documentService.Ask(cmd.Context(), question)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if asJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printAnswer(cmd, answer)
	return nil
}

// loadDocuments loads paths, reporting each failure and failing only when none loaded.
func loadDocuments(cmd *cobra.Command, paths []string) error {
	docs, failures := documentService.LoadMany(cmd.Context(), paths)

	failed := make([]string, 0, len(failures))
	for path := range failures {
		failed = append(failed, path)
	}
	sort.Strings(failed)
	for _, path := range failed {
		cmd.PrintErrf("Warning: could not load %s: %v\n", path, failures[path])
	}

	if len(docs) == 0 && len(paths) > 0 {
		return fmt.Errorf("no documents loaded: %w", domain.ErrNoDocumentsLoaded)
	}
	for _, doc := range docs {
		cmd.Printf("Loaded %s (%d chunks)\n", doc.Name, len(doc.Chunks))
	}
	return nil
}

func printAnswer(cmd *cobra.Command, answer *domain.Answer) {
	cmd.Println()
	cmd.Println(answer.Answer)
	cmd.Println()
	cmd.Printf("Confidence: %s\n", answer.Confidence)
	cmd.Printf("Chunks used: %d (from %d documents)\n", answer.ChunksUsed, answer.DocumentsSearched)
	printCitations(cmd, answer.Sources)
}

func printAssembledContext(cmd *cobra.Command, assembled *domain.AssembledContext) {
	if assembled.Empty() {
		cmd.Println("No relevant chunks found.")
		return
	}
	cmd.Println(assembled.Block)
	cmd.Println()
	printCitations(cmd, assembled.Citations)
}

func printCitations(cmd *cobra.Command, citations []domain.Citation) {
	if len(citations) == 0 {
		return
	}
	cmd.Println("Sources:")
	for i, c := range citations {
		cmd.Printf("  %d. %s (chunk %d, score %.2f)\n", i+1, c.Document, c.ChunkIndex, c.Score)
		if c.Preview != "" {
			cmd.Printf("     %s\n", strings.ReplaceAll(c.Preview, "\n", " "))
		}
	}
}
