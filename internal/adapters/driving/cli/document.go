package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Inspect indexed documents",
}

var documentListCmd = &cobra.Command{
	Use:   "list [collection]",
	Short: "List live documents in a collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

func init() {
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	collection := args[0]
	docs, err := documentService.ListByCollection(cmd.Context(), collection)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Printf("No documents found in %s\n", collection)
		return nil
	}

	for i := range docs {
		cmd.Printf("  %s  %s\n", docs[i].ID, truncate(docs[i].Text, 60))
	}
	cmd.Printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Collection: %s\n", doc.CollectionID)
	cmd.Printf("  Timestamp:  %s\n", doc.Timestamp)
	if doc.ThreadTimestamp != "" {
		cmd.Printf("  Thread:     %s\n", doc.ThreadTimestamp)
	}
	if doc.AuthorID != "" {
		cmd.Printf("  Author:     %s\n", doc.AuthorID)
	}
	if doc.CitationURI != "" {
		cmd.Printf("  Link:       %s\n", doc.CitationURI)
	}
	cmd.Printf("  Updated:    %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
	if doc.Deleted {
		cmd.Println(warnStyle.Render("  Deleted at source"))
	}
	cmd.Printf("\n%s\n", doc.Text)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
