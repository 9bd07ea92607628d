package kpi

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// LoginState is the result of an identity check.
type LoginState int

const (
	LoggedOut LoginState = iota
	LoggedIn
)

// String returns the wire spelling of the state.
func (s LoginState) String() string {
	switch s {
	case LoggedIn:
		return "logged_in"
	default:
		return "not_logged_in"
	}
}

// LoginStatus is produced by the identity check. LoginURL is only
// meaningful when State is LoggedOut.
type LoginStatus struct {
	State    LoginState
	LoginURL string
}

// MetricRow holds the per-entity numbers shown in the table.
type MetricRow struct {
	Name       string  `json:"name"`
	CPU        float64 `json:"cpu"`
	Memory     float64 `json:"memory"`
	Disk       float64 `json:"disk"`
	NetworkIn  float64 `json:"networkIn"`
	NetworkOut float64 `json:"networkOut"`
	Cost       float64 `json:"cost"`
}

// MetricsPayload is the body of GET /api/kpi-data. Label arrays pair
// index-to-index with their data arrays. The same JSON shape is used for
// the session cache.
type MetricsPayload struct {
	CostLabels []string  `json:"costLabels"`
	CostData   []float64 `json:"costData"`

	UtilizationLabels []string  `json:"utilizationLabels"`
	CPUData           []float64 `json:"cpuData"`
	MemoryData        []float64 `json:"memoryData"`
	DiskData          []float64 `json:"diskData"`

	NetworkLabels  []string  `json:"networkLabels"`
	NetworkInData  []float64 `json:"networkInData"`
	NetworkOutData []float64 `json:"networkOutData"`

	ResourceGroups      []string  `json:"resourceGroups"`
	ResourceGroupCounts []float64 `json:"resourceGroupCounts"`
	VMSizes             []string  `json:"vmSizes"`
	VMSizeCounts        []float64 `json:"vmSizeCounts"`
	StatusLabels        []string  `json:"statusLabels"`
	StatusCounts        []float64 `json:"statusCounts"`

	// Metrics is nil when the server sent no "metrics" key.
	Metrics []MetricRow `json:"metrics"`

	// FetchedAt is stamped client-side when the payload arrives.
	FetchedAt time.Time `json:"fetchedAt"`
}

// HasMetrics reports whether the payload carried a metrics list at all.
// An empty list still counts.
func (p *MetricsPayload) HasMetrics() bool {
	return p != nil && p.Metrics != nil
}

// wirePayload is the tolerant decoding form of MetricsPayload.
type wirePayload struct {
	Error *string `json:"error"`

	CostLabels labelList  `json:"costLabels"`
	CostData   numberList `json:"costData"`

	UtilizationLabels labelList  `json:"utilizationLabels"`
	CPUData           numberList `json:"cpuData"`
	MemoryData        numberList `json:"memoryData"`
	DiskData          numberList `json:"diskData"`

	NetworkLabels  labelList  `json:"networkLabels"`
	NetworkInData  numberList `json:"networkInData"`
	NetworkOutData numberList `json:"networkOutData"`

	ResourceGroups      labelList  `json:"resourceGroups"`
	ResourceGroupCounts numberList `json:"resourceGroupCounts"`
	VMSizes             labelList  `json:"vmSizes"`
	VMSizeCounts        numberList `json:"vmSizeCounts"`
	StatusLabels        labelList  `json:"statusLabels"`
	StatusCounts        numberList `json:"statusCounts"`

	Metrics   *rowList        `json:"metrics"`
	FetchedAt json.RawMessage `json:"fetchedAt"`
}

// decodePayload parses a kpi-data body. It fails only when the body is not a
// JSON object. Missing or malformed fields degrade to empty values. The
// returned string is the server's application error, if any.
func decodePayload(data []byte) (*MetricsPayload, string, error) {
	var w wirePayload
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, "", err
	}

	if w.Error != nil {
		msg := strings.TrimSpace(*w.Error)
		if msg == "" {
			msg = "Server reported an error"
		}
		return nil, msg, nil
	}

	p := &MetricsPayload{
		CostLabels:          w.CostLabels,
		CostData:            w.CostData,
		UtilizationLabels:   w.UtilizationLabels,
		CPUData:             w.CPUData,
		MemoryData:          w.MemoryData,
		DiskData:            w.DiskData,
		NetworkLabels:       w.NetworkLabels,
		NetworkInData:       w.NetworkInData,
		NetworkOutData:      w.NetworkOutData,
		ResourceGroups:      w.ResourceGroups,
		ResourceGroupCounts: w.ResourceGroupCounts,
		VMSizes:             w.VMSizes,
		VMSizeCounts:        w.VMSizeCounts,
		StatusLabels:        w.StatusLabels,
		StatusCounts:        w.StatusCounts,
	}

	// Network charts reuse the utilization axis when the server omits one
	if len(p.NetworkLabels) == 0 {
		p.NetworkLabels = p.UtilizationLabels
	}

	if w.Metrics != nil {
		p.Metrics = make([]MetricRow, len(*w.Metrics))
		copy(p.Metrics, *w.Metrics)
	}

	if len(w.FetchedAt) > 0 {
		var s string
		if json.Unmarshal(w.FetchedAt, &s) == nil {
			if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
				p.FetchedAt = t
			}
		}
	}

	return p, "", nil
}

// number decodes a JSON number, numeric string, or anything else (as 0).
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if len(s) >= 2 && s[0] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			*n = 0
			return nil
		}
		s = strings.TrimSpace(unquoted)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = number(f)
	return nil
}

// text decodes a JSON string, or formats a number; anything else is "".
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = text(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*t = text(strconv.FormatFloat(f, 'f', -1, 64))
		return nil
	}
	*t = ""
	return nil
}

// numberList decodes an array of numbers; a non-array value decodes as empty.
type numberList []float64

func (l *numberList) UnmarshalJSON(b []byte) error {
	var raw []number
	if err := json.Unmarshal(b, &raw); err != nil {
		*l = nil
		return nil
	}
	out := make(numberList, len(raw))
	for i, v := range raw {
		out[i] = float64(v)
	}
	*l = out
	return nil
}

// labelList decodes an array of labels; a non-array value decodes as empty.
type labelList []string

func (l *labelList) UnmarshalJSON(b []byte) error {
	var raw []text
	if err := json.Unmarshal(b, &raw); err != nil {
		*l = nil
		return nil
	}
	out := make(labelList, len(raw))
	for i, v := range raw {
		out[i] = string(v)
	}
	*l = out
	return nil
}

// wireRow is the tolerant form of MetricRow.
type wireRow struct {
	Name       text   `json:"name"`
	CPU        number `json:"cpu"`
	Memory     number `json:"memory"`
	Disk       number `json:"disk"`
	NetworkIn  number `json:"networkIn"`
	NetworkOut number `json:"networkOut"`
	Cost       number `json:"cost"`
}

// rowList decodes the metrics array. Entries that aren't objects are skipped;
// a non-array value decodes as an empty (but present) list.
type rowList []MetricRow

func (l *rowList) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		*l = rowList{}
		return nil
	}
	out := make(rowList, 0, len(raw))
	for _, item := range raw {
		var w wireRow
		if err := json.Unmarshal(item, &w); err != nil {
			continue
		}
		out = append(out, MetricRow{
			Name:       string(w.Name),
			CPU:        float64(w.CPU),
			Memory:     float64(w.Memory),
			Disk:       float64(w.Disk),
			NetworkIn:  float64(w.NetworkIn),
			NetworkOut: float64(w.NetworkOut),
			Cost:       float64(w.Cost),
		})
	}
	*l = out
	return nil
}

// wireLogin is the body of GET /api/check-login.
type wireLogin struct {
	Status   string `json:"status"`
	LoginURL string `json:"login_url"`
	Error    string `json:"error"`
}
