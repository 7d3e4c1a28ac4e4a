package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/akolanti/ChatPDF/internal/domain/commonModels"
	"github.com/akolanti/ChatPDF/internal/metrics"
	"github.com/dslipak/pdf"
)

var ErrUnreadableDocument = errors.New("unreadable document")

// Loader turns one stored upload into ordered page documents.
type Loader interface {
	Load(ctx context.Context) ([]commonModels.Page, error)
	Source() string
}

// PDFLoader reads a PDF from disk, one Page per PDF page.
type PDFLoader struct {
	Path        string
	FileName    string
	PageTimeout time.Duration

	// extract defaults to pdf.Page.GetPlainText
	extract func(pdf.Page) (string, error)
}

func (l *PDFLoader) Source() string {
	return l.FileName
}

func (l *PDFLoader) Load(ctx context.Context) (pages []commonModels.Page, err error) {
	logger.FromContext(ctx).Debug("extractPDF", "attempting extraction", l.Path)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("pdf_load", time.Since(start)) }()

	f, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat upload: %w", err)
	}

	// the parser panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: %v", ErrUnreadableDocument, r)
		}
	}()

	reader, err := pdf.NewReader(f, info.Size())
	if err != nil {
		logger.Error("failed opening of pdf file", "file", l.FileName, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	numPages := reader.NumPage()
	logger.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			logger.Warn("extractPDF", "page value is null", i)
			continue
		}

		content, err := protectExtract(ctx, page, l.extractor(), l.PageTimeout)
		if errors.Is(err, errPageTimeout) {
			// the stuck parser goroutine cannot be stopped, give up on the file
			logger.Warn("Aborting document load", "page", i, "error", err)
			return nil, fmt.Errorf("%w: page %d: %v", ErrUnreadableDocument, i, err)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			// Log warning but continue with other pages
			logger.Warn("Error parsing page content", "page", i, "error", err)
			continue
		}

		pages = append(pages, commonModels.Page{
			Number:  i,
			Source:  l.FileName,
			Content: content,
		})
	}
	return pages, nil
}

func (l *PDFLoader) extractor() func(pdf.Page) (string, error) {
	if l.extract != nil {
		return l.extract
	}
	return func(p pdf.Page) (string, error) { return p.GetPlainText(nil) }
}

var errPageTimeout = errors.New("page extraction timeout")

func protectExtract(ctx context.Context, page pdf.Page, extract func(pdf.Page) (string, error), timeout time.Duration) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{"", fmt.Errorf("page extraction panicked: %v", r)}
			}
		}()
		content, err := extract(page)
		resChan <- result{content, err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		return "", errPageTimeout
	}
}
