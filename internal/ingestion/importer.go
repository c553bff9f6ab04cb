package ingestion

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/profile-builder/internal/profile"
	"github.com/jonathan/profile-builder/internal/schemas"
	"github.com/jonathan/profile-builder/internal/types"
)

// ProfileExtractor structures resume text with a language model.
type ProfileExtractor interface {
	ExtractProfile(ctx context.Context, resumeText string) ([]byte, error)
}

// Source names the parser that produced a profile.
type Source string

const (
	SourceLLM       Source = "llm"
	SourceHeuristic Source = "heuristic"
)

// Importer parses uploaded resumes. Without an extractor it uses the
// heuristic section parser only.
type Importer struct {
	extractor ProfileExtractor
	logger    logrus.FieldLogger
}

// NewImporter returns an Importer. extractor may be nil.
func NewImporter(extractor ProfileExtractor, logger logrus.FieldLogger) *Importer {
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = l
	}
	return &Importer{extractor: extractor, logger: logger}
}

// ParsePDF extracts the text of a PDF resume and parses it.
func (im *Importer) ParsePDF(ctx context.Context, data []byte) (*types.ProfileData, error) {
	text, err := ExtractPDFText(data)
	if err != nil {
		return nil, err
	}
	result, _ := im.ParseText(ctx, text)
	return result, nil
}

// ParseText parses cleaned resume text. LLM output that fails schema
// validation is discarded in favour of the heuristic parser.
func (im *Importer) ParseText(ctx context.Context, text string) (*types.ProfileData, Source) {
	log := im.logger.WithField("chars", len(text))

	if im.extractor != nil {
		data, err := im.extractWithLLM(ctx, text)
		if err == nil {
			log.WithField("source", SourceLLM).Info("[import] resume parsed")
			return data, SourceLLM
		}
		log.WithError(err).Warn("[import] LLM extraction rejected, using heuristic parser")
	}

	data := ParseText(text)
	profile.NormalizeProfileData(data)
	log.WithField("source", SourceHeuristic).Info("[import] resume parsed")
	return data, SourceHeuristic
}

func (im *Importer) extractWithLLM(ctx context.Context, text string) (*types.ProfileData, error) {
	raw, err := im.extractor.ExtractProfile(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := schemas.ValidateProfileData(raw); err != nil {
		return nil, fmt.Errorf("extracted profile does not match schema: %w", err)
	}

	var data types.ProfileData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode extracted profile: %w", err)
	}
	profile.NormalizeProfileData(&data)
	ensureSlices(&data)
	return &data, nil
}
