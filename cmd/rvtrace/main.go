// rvtrace runs a program on the hart core with execution tracing enabled
// and renders the recorded trace as two PNGs: a pc-vs-step line plot and
// an opcode-frequency bar chart. It reuses RuiCat-circuit's plotting
// technique (gonum.org/v1/plot) for instruction-level telemetry instead of
// voltage/current waveforms.
package main

import (
	"flag"
	"fmt"
	"log"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"rvsim/config"
	"rvsim/decode"
	"rvsim/hart"
	"rvsim/loader"
)

func main() {
	var (
		configPath = flag.String("config", "", "Starlark config script (.star)")
		hexPath    = flag.String("hex", "", "load an Intel-HEX-like file into memory")
		elfPath    = flag.String("elf", "", "load an ELF binary into memory")
		steps      = flag.Int("steps", 10000, "maximum number of instructions to trace")
		out        = flag.String("out", "trace", "output file prefix (writes <out>-pc.png and <out>-opcodes.png)")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}

	h, err := hart.NewHart(cfg.MemSize, hart.NumRegs, cfg.Width)
	if err != nil {
		log.Fatal(err)
	}

	var entry uint64
	switch {
	case *elfPath != "":
		entry, err = loader.LoadElf(*elfPath, h.Memory())
	case *hexPath != "":
		err = loader.LoadHex(*hexPath, h.Memory())
	default:
		log.Fatal("rvtrace: one of -elf or -hex is required")
	}
	if err != nil {
		log.Fatal(err)
	}
	if entry != 0 {
		h.SetPC(entry)
	}

	h.EnableTrace(*steps)
	if _, err := h.Step(*steps); err != nil {
		log.Fatal(err)
	}

	samples := h.Trace().Samples()
	if len(samples) == 0 {
		log.Fatal("rvtrace: no instructions executed")
	}

	if err := plotPC(samples, *out+"-pc.png"); err != nil {
		log.Fatal(err)
	}
	if err := plotOpcodes(samples, *out+"-opcodes.png"); err != nil {
		log.Fatal(err)
	}
}

func plotPC(samples []hart.TraceSample, path string) error {
	p := plot.New()
	p.Title.Text = "pc over execution steps"
	p.X.Label.Text = "step"
	p.Y.Label.Text = "pc"

	pts := make(plotter.XYs, len(samples))
	for i, s := range samples {
		pts[i].X = float64(i)
		pts[i].Y = float64(s.PC)
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("rvtrace: pc plot: %w", err)
	}
	p.Add(line)

	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}

func plotOpcodes(samples []hart.TraceSample, path string) error {
	counts := make(map[decode.Kind]int, len(samples))
	for _, s := range samples {
		counts[decode.Kind(s.Kind)]++
	}

	kinds := make([]decode.Kind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return counts[kinds[i]] > counts[kinds[j]] })
	if len(kinds) > 16 {
		kinds = kinds[:16] // keep the plot readable; not a coverage cap on tracing itself
	}

	values := make(plotter.Values, len(kinds))
	names := make([]string, len(kinds))
	for i, k := range kinds {
		values[i] = float64(counts[k])
		names[i] = k.String()
	}

	p := plot.New()
	p.Title.Text = "opcode frequency"
	p.Y.Label.Text = "count"

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("rvtrace: opcode plot: %w", err)
	}
	bars.Color = plotutil.Color(0)
	p.Add(bars)
	p.NominalX(names...)

	return p.Save(10*vg.Inch, 4*vg.Inch, path)
}
