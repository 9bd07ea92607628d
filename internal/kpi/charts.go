package kpi

// Category identifies one of the fixed dashboard charts.
type Category string

const (
	CategoryCost           Category = "cost"
	CategoryUtilization    Category = "utilization"
	CategoryNetwork        Category = "network"
	CategoryResourceGroups Category = "resource_groups"
	CategoryVMSizes        Category = "vm_sizes"
	CategoryStatus         Category = "status"
)

// Categories lists every chart in display order.
var Categories = []Category{
	CategoryCost,
	CategoryUtilization,
	CategoryNetwork,
	CategoryResourceGroups,
	CategoryVMSizes,
	CategoryStatus,
}

// ChartKind hints how a chart should be drawn.
type ChartKind int

const (
	KindLine ChartKind = iota
	KindBar
)

// Series is one named run of values.
type Series struct {
	Name   string
	Values []float64
}

// ChartSpec is a normalized chart: every series has exactly len(Labels) values.
type ChartSpec struct {
	Category Category
	Title    string
	Kind     ChartKind
	Unit     string
	Labels   []string
	Series   []Series

	// Truncated is set when label and data lengths disagreed and the
	// longer arrays were cut to the common prefix.
	Truncated bool
}

// Empty reports whether the chart has nothing to draw.
func (c ChartSpec) Empty() bool {
	return len(c.Labels) == 0 || len(c.Series) == 0
}

type seriesSource struct {
	name   string
	values []float64
}

// BuildCharts turns a payload into one ChartSpec per category, in
// Categories order. A nil payload yields empty charts.
func BuildCharts(p *MetricsPayload) []ChartSpec {
	if p == nil {
		p = &MetricsPayload{}
	}

	networkLabels := p.NetworkLabels
	if len(networkLabels) == 0 {
		networkLabels = p.UtilizationLabels
	}

	return []ChartSpec{
		buildChart(CategoryCost, "Cost Trend", KindLine, "$", p.CostLabels,
			seriesSource{"Estimated Cost", p.CostData}),
		buildChart(CategoryUtilization, "Resource Utilization", KindLine, "%", p.UtilizationLabels,
			seriesSource{"CPU Usage", p.CPUData},
			seriesSource{"Memory Usage", p.MemoryData},
			seriesSource{"Disk Usage", p.DiskData}),
		buildChart(CategoryNetwork, "Network Throughput", KindLine, "MB/s", networkLabels,
			seriesSource{"Network In", p.NetworkInData},
			seriesSource{"Network Out", p.NetworkOutData}),
		buildChart(CategoryResourceGroups, "Entities by Resource Group", KindBar, "", p.ResourceGroups,
			seriesSource{"Count", p.ResourceGroupCounts}),
		buildChart(CategoryVMSizes, "Entities by Size", KindBar, "", p.VMSizes,
			seriesSource{"Count", p.VMSizeCounts}),
		buildChart(CategoryStatus, "Entities by Status", KindBar, "", p.StatusLabels,
			seriesSource{"Count", p.StatusCounts}),
	}
}

// buildChart pairs labels with values index-to-index. Absent series are
// dropped; the rest are cut to the shortest common length.
func buildChart(cat Category, title string, kind ChartKind, unit string, labels []string, sources ...seriesSource) ChartSpec {
	spec := ChartSpec{Category: cat, Title: title, Kind: kind, Unit: unit}

	n := len(labels)
	present := make([]seriesSource, 0, len(sources))
	for _, s := range sources {
		if len(s.values) == 0 {
			continue
		}
		present = append(present, s)
		if len(s.values) != len(labels) {
			spec.Truncated = true
		}
		if len(s.values) < n {
			n = len(s.values)
		}
	}

	if n == 0 || len(present) == 0 {
		return spec
	}

	spec.Labels = append([]string(nil), labels[:n]...)
	for _, s := range present {
		spec.Series = append(spec.Series, Series{
			Name:   s.name,
			Values: append([]float64(nil), s.values[:n]...),
		})
	}
	return spec
}
