package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"studymate-backend/internal/appstate"
	"studymate-backend/internal/uploads"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file.pdf]",
	Short: "Upload a PDF to a subject and request its summary",
	Long: `Stores the PDF under docs/uploaded_pdf/, sends its download URL to the summarization
service and records the document for the subject.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

var uploadSubjectID string

func init() {
	uploadCmd.Flags().StringVarP(&uploadSubjectID, "subject", "s", "", "Subject to upload into")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	a, err := app(cmd.Context())
	if err != nil {
		return err
	}

	docs := appstate.NewDocsStore(a.DocumentsService)
	orch := a.NewUploader(args[0], docs)

	asset, err := orch.Pick(cmd.Context())
	if errors.Is(err, uploads.ErrPickCanceled) {
		cmd.Println("No file selected.")
		return nil
	}
	if err != nil {
		return uploadError(err)
	}
	cmd.Printf("Selected %s (%s)\n", asset.Name, uploads.FormatSize(asset.Size))

	res, err := orch.Upload(cmd.Context(), uploadSubjectID)
	if err != nil {
		return uploadError(err)
	}

	cmd.Printf("Upload Complete!\n\nFile uploaded successfully!\n\nDownload Link:\n%s\n", res.DownloadURL)
	cmd.Printf("\nDocument %s added; subject now has %d documents.\n", res.Document.ID, len(docs.State().Docs))
	return nil
}

// uploadError keeps the classified failure so the message and error code reach the user.
func uploadError(err error) error {
	if errors.Is(err, uploads.ErrUploadInFlight) {
		return err
	}
	return uploads.Classify(err)
}
