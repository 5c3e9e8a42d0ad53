package cli

import (
	"bufio"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
)

var qaCmd = &cobra.Command{
	Use:   "qa [files...]",
	Short: "Interactive question answering over documents",
	Long: `Start an interactive session for asking questions about documents.

Commands inside the session:
  load <path>   load another document
  summary       list loaded documents
  clear         unload all documents
  help          show this help
  quit          leave the session

Anything else is asked as a question.`,
	RunE: runQA,
}

func init() {
	rootCmd.AddCommand(qaCmd)
}

func runQA(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx := cmd.Context()
	watchPrompts(ctx)

	if len(args) > 0 {
		docs, failures := documentService.LoadMany(ctx, args)
		for path, err := range failures {
			cmd.PrintErrf("Warning: could not load %s: %v\n", path, err)
		}
		cmd.Printf("Loaded %d document(s).\n", len(docs))
	}

	cmd.Println("Ask a question, or type 'help'.")
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		command, arg, _ := strings.Cut(line, " ")
		switch strings.ToLower(command) {
		case "quit", "exit":
			return nil
		case "help":
			cmd.Println(cmd.Long)
		case "summary":
			printDocumentSummary(cmd)
		case "clear":
			documentService.Clear()
			cmd.Println("All documents cleared.")
		case "load":
			qaLoad(cmd, strings.TrimSpace(arg))
		default:
			qaAsk(cmd, line)
		}
	}
}

func qaLoad(cmd *cobra.Command, path string) {
	if path == "" {
		cmd.Println("Usage: load <path>")
		return
	}
	doc, err := documentService.Load(cmd.Context(), path)
	if err != nil {
		cmd.Printf("Error: %v\n", err)
		return
	}
	cmd.Printf("Loaded %s: %d chunks, %d words\n", doc.Name, len(doc.Chunks), doc.WordCount())
}

func qaAsk(cmd *cobra.Command, question string) {
	answer, err := documentService.Ask(cmd.Context(), question)
	switch {
	case errors.Is(err, domain.ErrNoDocumentsLoaded):
		cmd.Println("No documents loaded. Use 'load <path>' first.")
		return
	case err != nil:
		cmd.Printf("Error: %v\n", err)
		return
	}
	printAnswer(cmd, answer)
}

func printDocumentSummary(cmd *cobra.Command) {
	docs := documentService.Documents()
	if len(docs) == 0 {
		cmd.Println("No documents loaded.")
		return
	}

	cmd.Printf("%d document(s), %d chunks\n", len(docs), documentService.ChunkCount())
	for _, doc := range docs {
		cmd.Printf("  %s: %d chunks, %d words, %d chars, loaded %s\n",
			doc.Name, len(doc.Chunks), doc.WordCount(), doc.CharCount(),
			doc.LoadedAt.Format("2006-01-02 15:04"))
	}
}
