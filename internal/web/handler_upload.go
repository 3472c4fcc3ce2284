package web

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/vbonduro/estatedocs/internal/domain"
	"github.com/vbonduro/estatedocs/internal/remote"
	"github.com/vbonduro/estatedocs/internal/session"
)

const (
	maxContractSize   = 50 << 20
	maxContractMemory = 10 << 20
)

// handleUploadContract attaches a document to a locator. The upload runs on
// a detached context so it completes even if the client navigates away.
func (s *Server) handleUploadContract(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	locatorID := r.PathValue("id")

	r.Body = http.MaxBytesReader(w, r.Body, maxContractSize)
	if err := r.ParseMultipartForm(maxContractMemory); err != nil {
		s.renderTable(w, r, tableView{Notice: "The file is too large or the form is incomplete.", Failed: true})
		return
	}

	f := contractForm{ContractType: r.FormValue("contractType")}
	if err := formValidate.Struct(f); err != nil {
		s.renderTable(w, r, tableView{Notice: validationMessage(err), Failed: true})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.renderTable(w, r, tableView{Notice: "Choose a file to upload.", Failed: true})
		return
	}
	defer closeWithLog(file, "upload file", s.logger)

	contract, err := s.service.UploadContract(context.WithoutCancel(r.Context()), sess.Token, sess.State.Estate, locatorID,
		domain.ContractType(f.ContractType), remote.Attachment{
			FileName: header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Content:  file,
		})
	if err != nil {
		s.renderTable(w, r, tableView{Notice: remote.UserMessage(err), Failed: true})
		return
	}
	s.renderTable(w, r, tableView{Notice: "Uploaded " + contract.Title() + "."})
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
