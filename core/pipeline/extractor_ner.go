package pipeline

import (
	"fmt"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/siherrmann/scout/helper"
	"github.com/siherrmann/scout/model"
)

// DefaultNERExtractor creates a seed-entity extractor using a NER model.
// Uses distilbert-NER for named entity recognition, detecting PERSON,
// ORGANIZATION, LOCATION and MISC entities in chunk text.
func DefaultNERExtractor(config *model.RetrievalConfig) (ExtractFunc, error) {
	if config == nil {
		config = model.DefaultRetrievalConfig()
	}

	// Prepare model (download if needed)
	// Using KnightsAnalytics optimized distilbert-NER model
	modelName := "KnightsAnalytics/distilbert-NER"
	modelPath, err := helper.PrepareModel(modelName, "model.onnx")
	if err != nil {
		return nil, err
	}

	// Initialize hugot session with Go backend
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	// Create token classification pipeline for NER
	nerConfig := hugot.TokenClassificationConfig{
		ModelPath: modelPath,
		Name:      "ner-pipeline",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
			pipelines.WithIgnoreLabels([]string{"O"}), // Ignore non-entity tokens
		},
	}
	nerPipeline, err := hugot.NewPipeline(session, nerConfig)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create NER pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create NER pipeline: %w", err)
	}

	return func(chunks []*model.RetrievedChunk) ([]string, error) {
		seen := map[string]bool{}
		var entities []string

		for _, chunk := range chunks {
			if len(entities) >= config.MaxEntities {
				break
			}

			result, err := nerPipeline.RunPipeline([]string{chunk.Text})
			if err != nil {
				return nil, fmt.Errorf("failed to run NER: %w", err)
			}
			if len(result.Entities) == 0 {
				continue
			}

			for _, entity := range result.Entities[0] {
				name := strings.TrimSpace(entity.Word)
				if name == "" || len(entities) >= config.MaxEntities {
					continue
				}
				key := strings.ToLower(name)
				if seen[key] {
					continue
				}
				seen[key] = true
				entities = append(entities, name)
			}
		}

		return entities, nil
	}, nil
}
