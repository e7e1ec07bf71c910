package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"doccompliance/internal/extract"
	"doccompliance/internal/models"
)

// ProcessUpload stores the upload in a scratch file, extracts its text, runs
// the compliance check and creates the session. A nil body means the request
// carried no file part. The scratch file is removed on every return path.
func (s *Service) ProcessUpload(ctx context.Context, filename string, body io.Reader) (*models.Session, error) {
	if body == nil {
		return nil, ErrNoFileProvided
	}
	if filename == "" {
		return nil, ErrNoFileSelected
	}
	if !extract.Allowed(filename) {
		return nil, ErrFileTypeNotAllowed
	}

	ext := extract.Extension(filename)
	stored := storedFilename(filename, ext)
	id := s.newID()
	tempPath := filepath.Join(s.uploadDir, id+"_"+stored)
	defer func() {
		if err := os.Remove(tempPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("remove upload failed", zap.String("path", tempPath), zap.Error(err))
		}
	}()

	if err := saveUpload(tempPath, body); err != nil {
		return nil, err
	}

	text, err := s.extractor.Extract(ctx, tempPath, ext)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoTextExtracted
	}

	report, err := s.checker.CheckCompliance(ctx, text)
	if err != nil {
		return nil, err
	}

	sess := &models.Session{
		ID:               id,
		OriginalFilename: stored,
		DocumentText:     text,
		ComplianceReport: report,
		CreatedAt:        s.now(),
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s.logger.Info("document processed",
		zap.String("file_id", id),
		zap.String("filename", stored),
		zap.Int("chars", len([]rune(text))),
	)
	return sess, nil
}

func saveUpload(path string, body io.Reader) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return fmt.Errorf("save upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("save upload: %w", err)
	}
	return nil
}

// Modify asks for a rewrite of the session's document and stores it,
// replacing any earlier rewrite.
func (s *Service) Modify(ctx context.Context, id string) (*models.Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	text, err := s.checker.RewriteDocument(ctx, sess.DocumentText, sess.ComplianceReport)
	if err != nil {
		return nil, err
	}
	name := ModifiedFilename(sess.OriginalFilename)
	if err := s.store.SaveModified(ctx, id, name, text); err != nil {
		return nil, err
	}
	sess.SetModified(text, name)
	if err := s.store.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	s.logger.Info("document modified", zap.String("file_id", id), zap.String("modified_filename", name))
	return sess, nil
}

// Download resolves the stored rewrite of a session to a file path and the
// name it should be served under.
func (s *Service) Download(ctx context.Context, id string) (path, name string, err error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return "", "", err
	}
	if !sess.HasModified() {
		return "", "", ErrNoModification
	}
	path, err = s.store.ModifiedPath(ctx, id, sess.ModifiedFilename)
	if err != nil {
		return "", "", err
	}
	return path, sess.ModifiedFilename, nil
}

// Status returns the stored session.
func (s *Service) Status(ctx context.Context, id string) (*models.Session, error) {
	return s.store.Get(ctx, id)
}
