package core

import (
	"encoding/json"
	"os"
	"runtime"
	"time"
)

// Measurement is one benchmark sample taken during block processing.
type Measurement struct {
	BlockNumber uint32             `json:"block_number"`
	RealMs      int64              `json:"real_ms"`
	CPUMs       int64              `json:"cpu_ms"`
	CurrentMem  uint64             `json:"current_mem"`
	IndexCounts map[string]int     `json:"index_counts,omitempty"`
}

// benchClock measures elapsed real/cpu time between samples.
type benchClock struct {
	startReal time.Time
	startCPU  time.Duration
}

func newBenchClock() *benchClock {
	return &benchClock{
		startReal: time.Now(),
		startCPU:  processCPUTime(),
	}
}

// measure takes a sample of elapsed time and heap usage, optionally with
// per-index item counts.
func (c *benchClock) measure(db *Database, indexCounts bool) Measurement {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	m := Measurement{
		RealMs:     time.Since(c.startReal).Milliseconds(),
		CPUMs:      (processCPUTime() - c.startCPU).Milliseconds(),
		CurrentMem: ms.HeapAlloc / 1024,
	}
	if indexCounts {
		d := db.DAO()
		m.IndexCounts = map[string]int{
			"account":            d.AccountCount(),
			"contract":           d.ContractCount(),
			"nfa":                d.NFACount(),
			"transaction_object": d.TransactionObjectCount(),
		}
	}
	return m
}

// BenchmarkDumper accumulates measurements and writes them to a JSON side
// file, mirroring what the replay benchmark produces.
type BenchmarkDumper struct {
	FileName     string
	Measurements []Measurement
}

// NewBenchmarkDumper makes a dumper writing to the given file.
func NewBenchmarkDumper(fileName string) *BenchmarkDumper {
	return &BenchmarkDumper{FileName: fileName}
}

// Add records one measurement.
func (d *BenchmarkDumper) Add(blockNum uint32, m Measurement) {
	m.BlockNumber = blockNum
	d.Measurements = append(d.Measurements, m)
}

// Dump writes all recorded measurements as JSON.
func (d *BenchmarkDumper) Dump() error {
	data, err := json.MarshalIndent(d.Measurements, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(d.FileName, data, 0644)
}
