package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/indecision/internal/export"
	"github.com/san-kum/indecision/internal/storage"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPARTICLE\tTIME\tN\tDURATION\tDT\tTHETA\tCONVERGED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4g\t%.4g\t%.4f\t%v\n",
			run.ID,
			run.Particle,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Time,
			run.Dt,
			run.LastTheta,
			run.Converged,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	_, thetas, err := st.LoadThetas(runID)
	if err != nil {
		return err
	}
	if len(thetas) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("particle: %s\n", meta.Particle)
	fmt.Printf("samples: %d\n\n", len(thetas))

	graph := asciigraph.Plot(thetas,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(1),
		asciigraph.Caption(fmt.Sprintf("theta vs time, 0 to %.4g", meta.Time)),
	)
	fmt.Println(graph)

	if meta.SteadyState != nil {
		fmt.Printf("\nsteady state: %.6f  last: %.6f\n", *meta.SteadyState, meta.LastTheta)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	data, err := storage.Export(st, args[0])
	if err != nil {
		return err
	}

	if format == "json" && outFile != "" {
		if err := storage.ExportJSON(outFile, data); err != nil {
			return err
		}
		fmt.Printf("exported to %s\n", outFile)
		return nil
	}

	var w io.Writer = os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "json":
		return storage.WriteJSON(w, data)
	case "csv":
		return storage.WriteCSV(w, data)
	case "svg":
		svg := export.ThetaToSVG(data.Times, data.Thetas, data.SteadyState, 800, 400, "#00ccff")
		if svg == "" {
			return fmt.Errorf("not enough samples to draw")
		}
		_, err := io.WriteString(w, svg)
		return err
	default:
		return fmt.Errorf("unknown format: %s (json, csv, svg)", format)
	}
}

func deleteRun(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", args[0])
	return nil
}
