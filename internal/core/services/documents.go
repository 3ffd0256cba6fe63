package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/codebook/internal/core/domain"
	"github.com/custodia-labs/codebook/internal/core/ports/driven"
	"github.com/custodia-labs/codebook/internal/core/study"
	"github.com/custodia-labs/codebook/internal/logger"
)

// importConcurrency bounds parallel parsing in ImportFiles.
const importConcurrency = 4

// AddDocument adds inline text as a document.
func (w *Workbench) AddDocument(
	ctx context.Context, studyID, title, content string, typ domain.DocumentType,
) (*domain.Document, error) {
	var doc domain.Document
	err := w.studyTx(ctx, studyID, func(s *study.Study) error {
		var err error
		doc, err = s.AddDocument(title, content, typ, 0)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// parseFile reads and parses one file. It takes no lock.
func (w *Workbench) parseFile(ctx context.Context, path string) (*driven.ParsedDocument, error) {
	if w.parser == nil {
		return nil, fmt.Errorf("%s: document parser not configured: %w", path, domain.ErrParseFailed)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	parsed, err := w.parser.Parse(ctx, filepath.Base(path), data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return parsed, nil
}

// ImportFile parses a file and adds it as a document.
// Nothing is added when parsing fails.
func (w *Workbench) ImportFile(ctx context.Context, studyID, path string) (*domain.Document, error) {
	parsed, err := w.parseFile(ctx, path)
	if err != nil {
		return nil, err
	}

	var doc domain.Document
	err = w.studyTx(ctx, studyID, func(s *study.Study) error {
		var err error
		doc, err = s.AddDocument(parsed.Title, parsed.Content, parsed.Type, parsed.Size)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("imported %s as %s (%d bytes)", path, doc.ID, doc.Size)
	return &doc, nil
}

// ImportFiles parses files concurrently and adds every one that parsed in
// a single transaction. The returned error joins the per-file failures.
func (w *Workbench) ImportFiles(ctx context.Context, studyID string, paths []string) ([]domain.Document, error) {
	parsed := make([]*driven.ParsedDocument, len(paths))
	failures := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(importConcurrency)
	for i, path := range paths {
		g.Go(func() error {
			p, err := w.parseFile(gctx, path)
			if err != nil {
				failures[i] = err
				return nil
			}
			parsed[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var docs []domain.Document
	err := w.studyTx(ctx, studyID, func(s *study.Study) error {
		docs = docs[:0]
		for i, p := range parsed {
			if p == nil {
				continue
			}
			doc, err := s.AddDocument(p.Title, p.Content, p.Type, p.Size)
			if err != nil {
				failures[i] = fmt.Errorf("add %s: %w", paths[i], err)
				continue
			}
			docs = append(docs, doc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, errors.Join(failures...)
}

// RemoveDocument removes a document with its excerpts and memos.
func (w *Workbench) RemoveDocument(ctx context.Context, studyID, id string) error {
	return w.studyTx(ctx, studyID, func(s *study.Study) error {
		return s.RemoveDocument(id)
	})
}

// ListDocuments returns the documents of a study.
func (w *Workbench) ListDocuments(studyID string) ([]domain.Document, error) {
	var docs []domain.Document
	err := w.view(studyID, func(s *study.Study) error {
		docs = s.Documents()
		return nil
	})
	return docs, err
}

// GetDocument returns one document.
func (w *Workbench) GetDocument(studyID, id string) (*domain.Document, error) {
	var doc domain.Document
	err := w.view(studyID, func(s *study.Study) error {
		var err error
		doc, err = s.Document(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
