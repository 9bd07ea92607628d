package demoserver

import (
	"fmt"
	"math"
	"math/rand"
)

// payload mirrors the wire shape of /api/kpi-data.
type payload struct {
	CostLabels          []string  `json:"costLabels"`
	CostData            []float64 `json:"costData"`
	UtilizationLabels   []string  `json:"utilizationLabels"`
	CPUData             []float64 `json:"cpuData"`
	MemoryData          []float64 `json:"memoryData"`
	DiskData            []float64 `json:"diskData"`
	NetworkLabels       []string  `json:"networkLabels"`
	NetworkInData       []float64 `json:"networkInData"`
	NetworkOutData      []float64 `json:"networkOutData"`
	ResourceGroups      []string  `json:"resourceGroups"`
	ResourceGroupCounts []float64 `json:"resourceGroupCounts"`
	VMSizes             []string  `json:"vmSizes"`
	VMSizeCounts        []float64 `json:"vmSizeCounts"`
	StatusLabels        []string  `json:"statusLabels"`
	StatusCounts        []float64 `json:"statusCounts"`
	Metrics             []entity  `json:"metrics"`
}

type entity struct {
	Name       string  `json:"name"`
	CPU        float64 `json:"cpu"`
	Memory     float64 `json:"memory"`
	Disk       float64 `json:"disk"`
	NetworkIn  float64 `json:"networkIn"`
	NetworkOut float64 `json:"networkOut"`
	Cost       float64 `json:"cost"`
}

type inventoryItem struct {
	name  string
	group string
	size  string
	state string
	base  entity
}

var inventory = []inventoryItem{
	{"vm-web-01", "rg-frontend", "Standard_B2s", "running", entity{CPU: 42, Memory: 61, Disk: 35, NetworkIn: 12.4, NetworkOut: 8.1, Cost: 61.2}},
	{"vm-web-02", "rg-frontend", "Standard_B2s", "running", entity{CPU: 38, Memory: 57, Disk: 33, NetworkIn: 11.9, NetworkOut: 7.6, Cost: 61.2}},
	{"vm-api-01", "rg-backend", "Standard_D4s_v5", "running", entity{CPU: 71, Memory: 74, Disk: 48, NetworkIn: 22.0, NetworkOut: 19.3, Cost: 140.2}},
	{"vm-api-02", "rg-backend", "Standard_D4s_v5", "running", entity{CPU: 66, Memory: 70, Disk: 47, NetworkIn: 20.5, NetworkOut: 18.8, Cost: 140.2}},
	{"vm-worker-01", "rg-backend", "Standard_F8s_v2", "running", entity{CPU: 88, Memory: 52, Disk: 29, NetworkIn: 4.2, NetworkOut: 2.7, Cost: 246.7}},
	{"vm-db-01", "rg-data", "Standard_E8s_v5", "running", entity{CPU: 54, Memory: 86, Disk: 79, NetworkIn: 31.7, NetworkOut: 27.9, Cost: 365.0}},
	{"vm-db-replica", "rg-data", "Standard_E8s_v5", "stopped", entity{Cost: 18.4}},
	{"vm-batch-01", "rg-data", "Standard_F8s_v2", "deallocated", entity{}},
	{"vm-jump", "rg-ops", "Standard_B1s", "running", entity{CPU: 4, Memory: 22, Disk: 12, NetworkIn: 0.3, NetworkOut: 0.2, Cost: 7.6}},
	{"vm-monitor", "rg-ops", "Standard_B2ms", "running", entity{CPU: 27, Memory: 48, Disk: 64, NetworkIn: 2.8, NetworkOut: 5.4, Cost: 60.7}},
	{"vm-ci-runner", "rg-ops", "Standard_D2s_v5", "running", entity{CPU: 93, Memory: 81, Disk: 71, NetworkIn: 9.8, NetworkOut: 3.1, Cost: 70.1}},
	{"vm-legacy", "rg-legacy", "Standard_A2_v2", "stopped", entity{Cost: 9.9}},
}

const trendPoints = 12

// generate builds one payload around the fixed inventory. jitter scales the
// random variation; zero yields the same payload every call.
func generate(rng *rand.Rand, jitter float64) payload {
	vary := func(v, spread float64) float64 {
		if v == 0 || jitter == 0 {
			return v
		}
		return round1(math.Max(0, v+(rng.Float64()*2-1)*spread*jitter))
	}
	pct := func(v float64) float64 { return math.Min(100, vary(v, 8)) }

	p := payload{}

	groupCount := map[string]float64{}
	sizeCount := map[string]float64{}
	stateCount := map[string]float64{}
	var cpuSum, memSum, diskSum, inSum, outSum, costSum float64
	running := 0.0
	for _, it := range inventory {
		e := entity{
			Name:       it.name,
			CPU:        pct(it.base.CPU),
			Memory:     pct(it.base.Memory),
			Disk:       pct(it.base.Disk),
			NetworkIn:  vary(it.base.NetworkIn, 3),
			NetworkOut: vary(it.base.NetworkOut, 3),
			Cost:       it.base.Cost,
		}
		p.Metrics = append(p.Metrics, e)

		p.ResourceGroups, groupCount = countInto(p.ResourceGroups, groupCount, it.group)
		p.VMSizes, sizeCount = countInto(p.VMSizes, sizeCount, it.size)
		p.StatusLabels, stateCount = countInto(p.StatusLabels, stateCount, it.state)

		costSum += e.Cost
		if it.state == "running" {
			running++
			cpuSum += e.CPU
			memSum += e.Memory
			diskSum += e.Disk
			inSum += e.NetworkIn
			outSum += e.NetworkOut
		}
	}
	p.ResourceGroupCounts = countsFor(p.ResourceGroups, groupCount)
	p.VMSizeCounts = countsFor(p.VMSizes, sizeCount)
	p.StatusCounts = countsFor(p.StatusLabels, stateCount)

	for i := 0; i < trendPoints; i++ {
		// oldest first, ending at the current totals
		age := float64(trendPoints - 1 - i)
		p.CostLabels = append(p.CostLabels, fmt.Sprintf("M-%d", trendPoints-1-i))
		p.CostData = append(p.CostData, round1(costSum*(1-0.03*age)+vary(20, 1)))

		label := fmt.Sprintf("-%dh", (trendPoints-1-i)*2)
		if i == trendPoints-1 {
			label = "now"
		}
		p.UtilizationLabels = append(p.UtilizationLabels, label)
		wave := math.Sin(float64(i) / 2)
		p.CPUData = append(p.CPUData, math.Min(100, vary(cpuSum/running+6*wave, 4)))
		p.MemoryData = append(p.MemoryData, math.Min(100, vary(memSum/running+3*wave, 2)))
		p.DiskData = append(p.DiskData, math.Min(100, vary(diskSum/running+0.2*float64(i), 1)))
		p.NetworkInData = append(p.NetworkInData, vary(inSum+4*wave, 5))
		p.NetworkOutData = append(p.NetworkOutData, vary(outSum+3*wave, 5))
	}
	p.CPUData = rounded(p.CPUData)
	p.MemoryData = rounded(p.MemoryData)
	p.DiskData = rounded(p.DiskData)
	p.NetworkInData = rounded(p.NetworkInData)
	p.NetworkOutData = rounded(p.NetworkOutData)
	p.NetworkLabels = p.UtilizationLabels
	return p
}

func countInto(labels []string, counts map[string]float64, key string) ([]string, map[string]float64) {
	if _, ok := counts[key]; !ok {
		labels = append(labels, key)
	}
	counts[key]++
	return labels, counts
}

func countsFor(labels []string, counts map[string]float64) []float64 {
	out := make([]float64, len(labels))
	for i, l := range labels {
		out[i] = counts[l]
	}
	return out
}

func rounded(vs []float64) []float64 {
	for i, v := range vs {
		vs[i] = round1(v)
	}
	return vs
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
