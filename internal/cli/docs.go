package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"studymate-backend/internal/appstate"
	"studymate-backend/internal/documents"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage uploaded documents",
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents, optionally for one subject",
	Args:  cobra.NoArgs,
	RunE:  runDocsList,
}

var docsShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show document metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsShow,
}

var docsRenameCmd = &cobra.Command{
	Use:   "rename [doc-id] [name]",
	Short: "Rename a document",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runDocsRename,
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document record",
	Long:  `Deletes the document record. The stored PDF is not removed.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsDelete,
}

var docsViewCmd = &cobra.Command{
	Use:   "view [doc-id]",
	Short: "Open a study material view for a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsView,
}

var (
	docsSubjectID string
	docsContent   string
)

func init() {
	docsListCmd.Flags().StringVarP(&docsSubjectID, "subject", "s", "", "Only list documents of this subject")
	docsViewCmd.Flags().StringVarP(&docsContent, "content", "c", "", "View to open: "+contentChoices())

	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsShowCmd)
	docsCmd.AddCommand(docsRenameCmd)
	docsCmd.AddCommand(docsDeleteCmd)
	docsCmd.AddCommand(docsViewCmd)
	rootCmd.AddCommand(docsCmd)
}

func contentChoices() string {
	names := make([]string, 0, len(appstate.ContentTypes))
	for _, ct := range appstate.ContentTypes {
		names = append(names, ct.String())
	}
	return strings.Join(names, ", ")
}

func runDocsList(cmd *cobra.Command, _ []string) error {
	a, err := app(cmd.Context())
	if err != nil {
		return err
	}
	store := appstate.NewDocsStore(a.DocumentsService)
	var st appstate.DocsState
	if strings.TrimSpace(docsSubjectID) != "" {
		st, err = store.LoadDocsBySubject(cmd.Context(), docsSubjectID)
	} else {
		st, err = store.LoadDocs(cmd.Context())
	}
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(st.Docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}
	for _, d := range st.Docs {
		printDoc(cmd, d)
	}
	cmd.Printf("\nTotal: %d documents\n", len(st.Docs))
	return nil
}

func printDoc(cmd *cobra.Command, d documents.Document) {
	cmd.Printf("  %s\n", d.ID)
	cmd.Printf("    Name: %s\n", d.Name)
	cmd.Printf("    Size: %s\n", d.Size)
	cmd.Printf("    Subject: %s\n", d.SubjectID)
	cmd.Printf("    Uploaded: %s\n", d.UploadedAt)
}

func runDocsShow(cmd *cobra.Command, args []string) error {
	a, err := app(cmd.Context())
	if err != nil {
		return err
	}
	doc, err := a.DocumentsService.Get(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			return fmt.Errorf("document not found: %s", args[0])
		}
		return err
	}
	printDoc(cmd, doc)
	cmd.Printf("    URL: %s\n", doc.URL)
	cmd.Printf("    Pages: %d\n", doc.Pages)
	return nil
}

func runDocsRename(cmd *cobra.Command, args []string) error {
	a, err := app(cmd.Context())
	if err != nil {
		return err
	}
	if err := a.DocumentsService.Rename(cmd.Context(), args[0], strings.Join(args[1:], " ")); err != nil {
		return err
	}
	cmd.Printf("Renamed document %s\n", args[0])
	return nil
}

func runDocsDelete(cmd *cobra.Command, args []string) error {
	a, err := app(cmd.Context())
	if err != nil {
		return err
	}
	if _, err := appstate.NewDocsStore(a.DocumentsService).DeleteDoc(cmd.Context(), args[0]); err != nil {
		return err
	}
	cmd.Printf("Deleted document %s\n", args[0])
	return nil
}

func runDocsView(cmd *cobra.Command, args []string) error {
	ct, err := appstate.ParseContentType(docsContent)
	if err != nil {
		return fmt.Errorf("%w (choose one of: %s)", err, contentChoices())
	}
	a, err := app(cmd.Context())
	if err != nil {
		return err
	}
	doc, err := a.DocumentsService.Get(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			return fmt.Errorf("document not found: %s", args[0])
		}
		return err
	}

	store := appstate.NewDocsStore(a.DocumentsService)
	store.SetSelectedDoc(&doc)
	st := store.SetSelectedContent(ct)

	cmd.Printf("%s\n\n", st.SelectedDoc.Name)
	if st.SelectedContent == appstate.ContentNone {
		for _, item := range appstate.Menu() {
			cmd.Printf("  %-15s %s\n", item.Title, item.Description)
		}
		return nil
	}
	cmd.Printf("%s\n%s\n", st.SelectedContent.Title(), st.SelectedContent.Description())
	return nil
}
