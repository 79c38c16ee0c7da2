package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lasmonitor/lasmonitor/internal/archive"
	"github.com/lasmonitor/lasmonitor/internal/progress"
	"github.com/lasmonitor/lasmonitor/internal/reading"
	"github.com/lasmonitor/lasmonitor/internal/scoring"
)

func cmdList(args []string) error {
	fs, cfg := newFlagSet("list")
	what := fs.String("what", "students", "students|materials|assessments")
	student := fs.String("student", "", "student id, for -what assessments")
	if err := parse(fs, args); err != nil {
		return err
	}
	return withStore(cfg, func(ctx context.Context, store *reading.Store) error {
		switch *what {
		case "students":
			for _, st := range store.Students() {
				fmt.Printf("%s\t%s\tgrade %d\n", st.ID, st.Name, st.Grade)
			}
		case "materials":
			for _, m := range store.Materials() {
				fmt.Printf("%s\t%s\tlexile %s\tlix %s\twords %s\n",
					m.ID, m.Title, fmtOpt(m.Lexile), fmtOpt(m.Lix), fmtOpt(m.Words))
			}
		case "assessments":
			if *student == "" {
				return fmt.Errorf("pass -student <id>")
			}
			settings := store.Settings()
			for _, a := range store.AssessmentsFor(*student) {
				nrs := "–"
				if v, ok := scoring.NRS(a, settings.Ranges, settings.Weights); ok {
					nrs = fmt.Sprint(v)
				}
				fmt.Printf("%s\t%s\twpm %s\tcomp %s\tNRS %s\n",
					a.ID, a.Date, fmtOpt(a.WPM), fmtOpt(a.Comprehension), nrs)
			}
		default:
			return fmt.Errorf("unknown -what %q", *what)
		}
		return nil
	})
}

func cmdReport(args []string) error {
	fs, cfg := newFlagSet("report")
	student := fs.String("student", "", "student id for a per-student series; empty for cohort report")
	if err := parse(fs, args); err != nil {
		return err
	}
	return withStore(cfg, func(ctx context.Context, store *reading.Store) error {
		snap := store.Snapshot()
		if *student != "" {
			for _, p := range progress.StudentSeries(snap, *student) {
				fmt.Printf("%s\tNRS %s\twpm %s\tcomp %s\n",
					p.Date, fmtOptInt(p.NRS), fmtOpt(p.WPM), fmtOpt(p.Comprehension))
			}
			return nil
		}
		fmt.Println("cohort NRS by date:")
		for _, p := range progress.CohortSeries(snap) {
			fmt.Printf("  %s\t%d\t(%d measurements)\n", p.Date, p.NRS, p.N)
		}
		fmt.Println("students:")
		for _, st := range progress.Overview(snap) {
			fmt.Printf("  %s (grade %d)\t%d measurements\tNRS %s\tΔ %s\n",
				st.Student.Name, st.Student.Grade, st.Assessments,
				fmtOptInt(st.LastNRS), fmtOptInt(st.Delta))
		}
		fmt.Println("advice:")
		for _, adv := range progress.Advice(snap) {
			fmt.Printf("  %s:", adv.Student.Name)
			for _, n := range adv.Notes {
				fmt.Printf(" %s.", n)
			}
			fmt.Println()
		}
		return nil
	})
}

func cmdSet(args []string) error {
	fs, cfg := newFlagSet("set")
	rng := fs.String("range", "", "metric whose range bound to set: wpm|comp|lexile|lix")
	bound := fs.String("bound", "", "min|max, with -range")
	weight := fs.String("weight", "", "component whose weight to set: wpm|comp|level")
	target := fs.Int("target", 0, "grade whose target to set, with -field")
	field := fs.String("field", "", "wpm|comp, with -target")
	value := fs.Float64("value", 0, "numeric value to set")
	if err := parse(fs, args); err != nil {
		return err
	}
	return withStore(cfg, func(ctx context.Context, store *reading.Store) error {
		switch {
		case *rng != "":
			b := reading.BoundMin
			switch *bound {
			case "min":
			case "max":
				b = reading.BoundMax
			default:
				return fmt.Errorf("pass -bound min or -bound max")
			}
			return store.SetRangeBound(ctx, reading.Metric(*rng), b, *value)
		case *weight != "":
			return store.SetWeight(ctx, reading.Component(*weight), *value)
		case *target != 0:
			return store.SetTarget(ctx, *target, reading.TargetField(*field), *value)
		default:
			return fmt.Errorf("pass one of -range, -weight, -target")
		}
	})
}

func cmdExport(args []string) error {
	fs, cfg := newFlagSet("export")
	if err := parse(fs, args); err != nil {
		return err
	}
	return withStore(cfg, func(ctx context.Context, store *reading.Store) error {
		return archive.Export(os.Stdout, store.Snapshot())
	})
}

func cmdImport(args []string) error {
	fs, cfg := newFlagSet("import")
	if err := parse(fs, args); err != nil {
		return err
	}
	return withStore(cfg, func(ctx context.Context, store *reading.Store) error {
		snap, err := archive.Import(os.Stdin)
		if err != nil {
			return err
		}
		store.Replace(ctx, snap)
		fmt.Println("imported")
		return nil
	})
}

func cmdSave(args []string) error {
	fs, cfg := newFlagSet("save")
	path := fs.String("file", "lasmonitor-data.json", "path to write the aggregate to")
	if err := parse(fs, args); err != nil {
		return err
	}
	return withStore(cfg, func(ctx context.Context, store *reading.Store) error {
		if err := archive.SaveFile(*path, store.Snapshot()); err != nil {
			return err
		}
		fmt.Printf("saved %s\n", *path)
		return nil
	})
}

func cmdOpen(args []string) error {
	fs, cfg := newFlagSet("open")
	path := fs.String("file", "", "path to read the aggregate from")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("pass -file <path>")
	}
	return withStore(cfg, func(ctx context.Context, store *reading.Store) error {
		snap, err := archive.OpenFile(*path)
		if err != nil {
			return err
		}
		store.Replace(ctx, snap)
		fmt.Printf("opened %s\n", *path)
		return nil
	})
}

func fmtOpt(v *float64) string {
	if v == nil {
		return "–"
	}
	return fmt.Sprintf("%g", *v)
}

func fmtOptInt(v *int) string {
	if v == nil {
		return "–"
	}
	return fmt.Sprint(*v)
}
