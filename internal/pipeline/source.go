package pipeline

import (
	"github.com/SultanAlanazie/stock-market-dashboard/internal/config"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/saver"
)

// FileSource reads the output tables written by Rebuild
type FileSource struct {
	Config config.PipelineConfig
	Saver  saver.TableSaver
}

func (s FileSource) LoadEnriched() ([]models.EnrichedObservation, error) {
	return s.Saver.LoadEnriched(s.Config.CleanedPath(s.Saver.Extension()))
}

func (s FileSource) LoadSummary() ([]models.SummaryRecord, error) {
	return s.Saver.LoadSummary(s.Config.SummaryPath(s.Saver.Extension()))
}
