package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"studymate-backend/internal/appstate"
)

var subjectsCmd = &cobra.Command{
	Use:   "subjects",
	Short: "Manage subjects",
}

var subjectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subjects, most recently updated first",
	Args:  cobra.NoArgs,
	RunE:  runSubjectsList,
}

var subjectsCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a subject",
	Long:  `Creates a subject. Names are compared case-insensitively against existing subjects.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSubjectsCreate,
}

var subjectsRenameCmd = &cobra.Command{
	Use:   "rename [subject-id] [name]",
	Short: "Rename a subject",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSubjectsRename,
}

var subjectsDeleteCmd = &cobra.Command{
	Use:   "delete [subject-id]",
	Short: "Delete a subject",
	Long:  `Deletes a subject. Documents that reference it are left in place.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSubjectsDelete,
}

var subjectsAddURLCmd = &cobra.Command{
	Use:   "add-url [subject-id] [url]",
	Short: "Attach a PDF URL to a subject",
	Args:  cobra.ExactArgs(2),
	RunE:  runSubjectsAddURL,
}

var subjectsRemoveURLCmd = &cobra.Command{
	Use:   "remove-url [subject-id] [url]",
	Short: "Detach a PDF URL from a subject",
	Args:  cobra.ExactArgs(2),
	RunE:  runSubjectsRemoveURL,
}

func init() {
	subjectsCmd.AddCommand(subjectsListCmd)
	subjectsCmd.AddCommand(subjectsCreateCmd)
	subjectsCmd.AddCommand(subjectsRenameCmd)
	subjectsCmd.AddCommand(subjectsDeleteCmd)
	subjectsCmd.AddCommand(subjectsAddURLCmd)
	subjectsCmd.AddCommand(subjectsRemoveURLCmd)
	rootCmd.AddCommand(subjectsCmd)
}

func runSubjectsList(cmd *cobra.Command, _ []string) error {
	a, err := app(cmd.Context())
	if err != nil {
		return err
	}
	st, err := appstate.NewSubjectStore(a.SubjectsService).LoadSubjects(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list subjects: %w", err)
	}
	if len(st.Subjects) == 0 {
		cmd.Println("No subjects yet.")
		return nil
	}
	for _, s := range st.Subjects {
		cmd.Printf("  %s\n", s.ID)
		cmd.Printf("    Name: %s\n", s.Name)
		cmd.Printf("    PDFs: %d\n", len(s.PDFURLs))
		cmd.Printf("    Updated: %s\n", s.UpdatedAt.Format(time.RFC3339))
	}
	cmd.Printf("\nTotal: %d subjects\n", len(st.Subjects))
	return nil
}

func runSubjectsCreate(cmd *cobra.Command, args []string) error {
	a, err := app(cmd.Context())
	if err != nil {
		return err
	}
	store := appstate.NewSubjectStore(a.SubjectsService)
	if _, err := store.LoadSubjects(cmd.Context()); err != nil {
		return fmt.Errorf("failed to load subjects: %w", err)
	}
	created, st, err := store.CreateSubject(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		if st.Error != "" {
			return fmt.Errorf("%s", st.Error)
		}
		return err
	}
	cmd.Printf("Created subject %s (%s)\n", created.Name, created.ID)
	return nil
}

func runSubjectsRename(cmd *cobra.Command, args []string) error {
	a, err := app(cmd.Context())
	if err != nil {
		return err
	}
	if err := a.SubjectsService.Rename(cmd.Context(), args[0], strings.Join(args[1:], " ")); err != nil {
		return err
	}
	cmd.Printf("Renamed subject %s\n", args[0])
	return nil
}

func runSubjectsDelete(cmd *cobra.Command, args []string) error {
	a, err := app(cmd.Context())
	if err != nil {
		return err
	}
	if _, err := appstate.NewSubjectStore(a.SubjectsService).DeleteSubject(cmd.Context(), args[0]); err != nil {
		return err
	}
	cmd.Printf("Deleted subject %s\n", args[0])
	return nil
}

func runSubjectsAddURL(cmd *cobra.Command, args []string) error {
	a, err := app(cmd.Context())
	if err != nil {
		return err
	}
	if err := a.SubjectsService.AddURL(cmd.Context(), args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Added %s to subject %s\n", args[1], args[0])
	return nil
}

func runSubjectsRemoveURL(cmd *cobra.Command, args []string) error {
	a, err := app(cmd.Context())
	if err != nil {
		return err
	}
	if err := a.SubjectsService.RemoveURL(cmd.Context(), args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Removed %s from subject %s\n", args[1], args[0])
	return nil
}
