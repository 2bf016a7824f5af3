package metrics

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"relayping/internal/model"
	"relayping/internal/selection"
)

// Sample is one probe outcome as exported.
type Sample struct {
	Timestamp time.Time
	Hostname  string
	Country   string
	City      string
	Provider  string
	Address   string
	Reachable bool
	RTT       model.RTT
}

var header = []string{
	"timestamp",
	"hostname",
	"country_code",
	"city_code",
	"provider",
	"address",
	"reachable",
	"rtt_min_ms",
	"rtt_avg_ms",
	"rtt_max_ms",
}

// Samples converts probed candidates taken at ts.
func Samples(ts time.Time, cands []selection.Candidate, ipv6 bool) []Sample {
	out := make([]Sample, 0, len(cands))
	for _, c := range cands {
		s := Sample{
			Timestamp: ts,
			Hostname:  c.Hostname(),
			Country:   c.Relay.Text(model.CountryCode),
			City:      c.Relay.Text(model.CityCode),
			Provider:  c.Relay.Text(model.Provider),
			Address:   c.Relay.Address(ipv6),
			Reachable: c.Reachable(),
		}
		if c.RTT != nil {
			s.RTT = *c.RTT
		}
		out = append(out, s)
	}
	return out
}

// WriteCSV writes samples to CSV with a fixed column order.
func WriteCSV(w io.Writer, items []Sample) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return err
	}
	return writeRecords(writer, items)
}

// AppendCSV appends samples to path, writing the header only when the file is new or empty.
func AppendCSV(path string, items []Sample) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return WriteCSV(file, items)
	}
	return writeRecords(csv.NewWriter(file), items)
}

func writeRecords(writer *csv.Writer, items []Sample) error {
	for _, s := range items {
		record := []string{
			s.Timestamp.UTC().Format(time.RFC3339Nano),
			s.Hostname,
			s.Country,
			s.City,
			s.Provider,
			s.Address,
			strconv.FormatBool(s.Reachable),
			formatMs(s.Reachable, s.RTT.Min),
			formatMs(s.Reachable, s.RTT.Avg),
			formatMs(s.Reachable, s.RTT.Max),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatMs(ok bool, v float64) string {
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}
