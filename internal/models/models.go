package models

import "time"

// Row is one record from an uploaded export. Column names are not fixed;
// each department configures its own export, so columns are discovered at
// runtime via the analytics locator.
type Row map[string]string

// RawData holds the uploaded batches of one dataset. Any batch may be empty;
// trips is the only one required at import time.
type RawData struct {
	Trips        []Row `json:"trips,omitempty"`
	Quotes       []Row `json:"quotes,omitempty"`
	Passthroughs []Row `json:"passthroughs,omitempty"`
	HotPass      []Row `json:"hot_pass,omitempty"`
	Bookings     []Row `json:"bookings,omitempty"`
	NonConverted []Row `json:"non_converted,omitempty"`
}

type AggregateBucket struct {
	Key          string  `json:"key"`
	Trips        int     `json:"trips"`
	Passthroughs int     `json:"passthroughs"`
	Quotes       int     `json:"quotes,omitempty"`
	HotPasses    int     `json:"hot_passes,omitempty"`
	Rate         float64 `json:"rate"`
}

type Totals struct {
	Trips        int `json:"trips"`
	Passthroughs int `json:"passthroughs"`
	Quotes       int `json:"quotes"`
	HotPasses    int `json:"hot_passes"`
}

// DepartmentPerformance is the department-level rollup for one dimension
// family and one metric. Buckets are sorted descending by rate.
type DepartmentPerformance struct {
	Metric        string            `json:"metric"`
	Timeframe     string            `json:"timeframe"`
	Buckets       []AggregateBucket `json:"buckets"`
	Top           []AggregateBucket `json:"top"`
	Bottom        []AggregateBucket `json:"bottom"`
	Totals        Totals            `json:"totals"`
	OverallRate   float64           `json:"overall_rate"`
	DataAvailable bool              `json:"data_available"`
}

type AgentBucket struct {
	AggregateBucket
	Team      string            `json:"team,omitempty"`
	Senior    bool              `json:"senior"`
	Deviation float64           `json:"deviation"`
	Regions   []AggregateBucket `json:"regions"`
}

type AgentPerformance struct {
	Timeframe     string        `json:"timeframe"`
	Agents        []AgentBucket `json:"agents"`
	AboveAverage  []AgentBucket `json:"above_average"`
	BelowAverage  []AgentBucket `json:"below_average"`
	Totals        Totals        `json:"totals"`
	OverallRate   float64       `json:"overall_rate"`
	DataAvailable bool          `json:"data_available"`
}

type SegmentPerformance struct {
	Timeframe     string            `json:"timeframe"`
	ClientType    []AggregateBucket `json:"client_type"`
	Channel       []AggregateBucket `json:"channel"`
	DataAvailable bool              `json:"data_available"`
}

type Recommendation struct {
	Key            string  `json:"key"`
	Rate           float64 `json:"rate"`
	DepartmentRate float64 `json:"department_rate"`
	Deviation      float64 `json:"deviation"`
	Trips          int     `json:"trips"`
	Priority       string  `json:"priority"`
	Reason         string  `json:"reason"`
	PotentialGain  float64 `json:"potential_gain"`
}

// LabelCount is the chart-ready {label, count, percentage} shape.
type LabelCount struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ChartPoint is one flattened (period, dimension, rate) point for trend charts.
type ChartPoint struct {
	Period string  `json:"period"`
	Key    string  `json:"key"`
	Rate   float64 `json:"rate"`
	Trips  int     `json:"trips"`
}

type PeriodTrend struct {
	Periods       []string                     `json:"periods"`
	TopByPeriod   map[string][]AggregateBucket `json:"top_by_period"`
	Points        []ChartPoint                 `json:"points"`
	DataAvailable bool                         `json:"data_available"`
}

type TimingInsights struct {
	Timeframe     string       `json:"timeframe"`
	ByWeekday     []LabelCount `json:"by_weekday"`
	ByTimeOfDay   []LabelCount `json:"by_time_of_day"`
	HasTimeOfDay  bool         `json:"has_time_of_day"`
	BestDay       *string      `json:"best_day"`
	BestTime      *string      `json:"best_time"`
	DataAvailable bool         `json:"data_available"`
}

// Insights is the snapshot handed to the narrative prompt builder.
type Insights struct {
	Timeframe  string            `json:"timeframe"`
	Totals     Totals            `json:"totals"`
	TPRate     float64           `json:"tp_rate"`
	PQRate     float64           `json:"pq_rate"`
	Timing     TimingInsights    `json:"timing"`
	Reasons    []LabelCount      `json:"reasons"`
	TopRegions []AggregateBucket `json:"top_regions"`
	TopAgents  []AgentBucket     `json:"top_agents"`
}

// MeetingAgendaData is the export-ready snapshot consumed verbatim by the
// document layer. Field names and nesting are part of the contract; the
// export side indexes into the top/bottom lists positionally.
type MeetingAgendaData struct {
	Program         string            `json:"program"`
	Timeframe       string            `json:"timeframe"`
	GeneratedAt     time.Time         `json:"generated_at"`
	Totals          Totals            `json:"totals"`
	TPRate          float64           `json:"tp_rate"`
	PQRate          float64           `json:"pq_rate"`
	HotPassRate     float64           `json:"hot_pass_rate"`
	TopRegions      []AggregateBucket `json:"top_regions"`
	BottomRegions   []AggregateBucket `json:"bottom_regions"`
	TopAgents       []AgentBucket     `json:"top_agents"`
	Recommendations []Recommendation  `json:"recommendations"`
	Timing          TimingInsights    `json:"timing"`
	Reasons         []LabelCount      `json:"reasons"`
}

type NarrativeBlock struct {
	Kind string `json:"kind"` // heading | bullet | paragraph | blank
	Text string `json:"text"`
}

type Dataset struct {
	ID           string              `json:"id"`
	CreatedAt    time.Time           `json:"created_at"`
	Data         RawData             `json:"-"`
	Teams        map[string][]string `json:"teams,omitempty"`
	SeniorAgents []string            `json:"senior_agents,omitempty"`
}

type DatasetSummary struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	RowCounts map[string]int `json:"row_counts"`
}
