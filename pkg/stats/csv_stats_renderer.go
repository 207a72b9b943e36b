package stats

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/fundflow/fundflow/pkg/event"
	log "github.com/sirupsen/logrus"
)

type StatsRenderer interface {
	RenderStats(stats StatsSummary) (string, error)
}

type CsvStatsRendererImpl struct {
}

func NewCsvStatsRenderer() *CsvStatsRendererImpl {
	return &CsvStatsRendererImpl{}
}

func (t *CsvStatsRendererImpl) RenderStats(stats StatsSummary) (string, error) {
	data := make([][]string, 0, stats.EventCount+len(stats.Days)+5)
	data = append(data, []string{"Date", "Event", "Start", "End", "Alloted"})

	for _, day := range stats.Days {
		for _, e := range day.Events {
			data = append(data, []string{
				e.Date.Format(event.DateLayout),
				e.Name,
				e.Start.String(),
				e.End.String(),
				e.Alloted.StringFixed(2),
			})
		}
		data = append(data, []string{day.Date.Format(event.DateLayout), "Day total", "", "", day.TotalAlloted.StringFixed(2)})
	}

	data = append(data,
		[]string{"Spent", "", "", "", stats.Spent.StringFixed(2)},
		[]string{"Planned", "", "", "", stats.Planned.StringFixed(2)},
		[]string{"Total", strconv.Itoa(stats.EventCount), "", "", stats.TotalAlloted.StringFixed(2)},
		[]string{"Current budget", "", "", "", stats.CurrentBudget.StringFixed(2)},
	)

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		err := writer.Write(row)
		if err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}
