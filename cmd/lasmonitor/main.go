// lasmonitor is a thin host around the record-keeping library: it opens
// the configured snapshot store, performs one action, and prints the
// result. All semantics live under internal/.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/peterbourgon/ff/v3"

	"github.com/lasmonitor/lasmonitor/internal/config"
	"github.com/lasmonitor/lasmonitor/internal/reading"
	"github.com/lasmonitor/lasmonitor/internal/snapshot"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	run, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}
	if err := run(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var commands = map[string]func(args []string) error{
	"add-student":    cmdAddStudent,
	"add-material":   cmdAddMaterial,
	"add-assessment": cmdAddAssessment,
	"delete":         cmdDelete,
	"list":           cmdList,
	"report":         cmdReport,
	"set":            cmdSet,
	"export":         cmdExport,
	"import":         cmdImport,
	"save":           cmdSave,
	"open":           cmdOpen,
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: lasmonitor <command> [flags]

commands:
  add-student     add a student to the roster
  add-material    add a reading material
  add-assessment  record a measurement for a student
  delete          delete a student, material or assessment by id
  list            list students, materials or a student's assessments
  report          overview, cohort trend and advice
  set             change one settings field
  export          write the aggregate as JSON to stdout
  import          replace the aggregate from a JSON file on stdin
  save            write the aggregate as JSON to a file
  open            replace the aggregate from a JSON file

store selection (every command): -store file|sqlite|postgres, -data-dir,
-dsn, -key; env fallback with prefix LASMONITOR.`)
}

// newFlagSet pre-registers the store-selection flags every command takes.
func newFlagSet(name string) (*flag.FlagSet, *config.Config) {
	def := config.FromEnv()
	fs := flag.NewFlagSet("lasmonitor "+name, flag.ExitOnError)
	cfg := &config.Config{}
	fs.StringVar((*string)(&cfg.Store), "store", string(def.Store), "snapshot store: file|sqlite|postgres")
	fs.StringVar(&cfg.DataDir, "data-dir", def.DataDir, "base directory for the file store")
	fs.StringVar(&cfg.DSN, "dsn", def.DSN, "dsn for the sqlite/postgres store")
	fs.StringVar(&cfg.SnapshotKey, "key", def.SnapshotKey, "slot key the aggregate is kept under")
	return fs, cfg
}

func parse(fs *flag.FlagSet, args []string) error {
	return ff.Parse(fs, args, ff.WithEnvVarPrefix("LASMONITOR"))
}

// openStore wires the configured slot and loads the aggregate.
func openStore(ctx context.Context, cfg *config.Config) (*reading.Store, func(), error) {
	switch cfg.Store {
	case config.StoreFile:
		slot, err := snapshot.NewFileSlot(cfg.DataDir, cfg.SnapshotKey)
		if err != nil {
			return nil, nil, fmt.Errorf("open file store: %w", err)
		}
		return reading.Load(ctx, slot, nil), func() {}, nil
	case config.StoreSQLite, config.StorePostgres:
		db, err := snapshot.Open(ctx, snapshot.Driver(cfg.Store), cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
		}
		slot := snapshot.NewSQLSlot(db, cfg.SnapshotKey)
		return reading.Load(ctx, slot, nil), func() { db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store kind %q", cfg.Store)
	}
}

func withStore(cfg *config.Config, fn func(ctx context.Context, store *reading.Store) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(ctx, store)
}

func cmdAddStudent(args []string) error {
	fs, cfg := newFlagSet("add-student")
	name := fs.String("name", "", "student name")
	grade := fs.Int("grade", 0, "school grade, e.g. 8")
	if err := parse(fs, args); err != nil {
		return err
	}
	return withStore(cfg, func(ctx context.Context, store *reading.Store) error {
		st, ok := store.AddStudent(ctx, *name, *grade)
		if !ok {
			return fmt.Errorf("student name must not be empty")
		}
		fmt.Printf("added student %s (grade %d) id=%s\n", st.Name, st.Grade, st.ID)
		return nil
	})
}

func cmdAddMaterial(args []string) error {
	fs, cfg := newFlagSet("add-material")
	title := fs.String("title", "", "material title")
	lexile := fs.String("lexile", "", "lexile value, empty for unknown")
	lix := fs.String("lix", "", "lix value, empty for unknown")
	words := fs.String("words", "", "word count, empty for unknown")
	if err := parse(fs, args); err != nil {
		return err
	}
	lex, err := optFloat(*lexile, "lexile")
	if err != nil {
		return err
	}
	lx, err := optFloat(*lix, "lix")
	if err != nil {
		return err
	}
	wd, err := optFloat(*words, "words")
	if err != nil {
		return err
	}
	return withStore(cfg, func(ctx context.Context, store *reading.Store) error {
		m, ok := store.AddMaterial(ctx, *title, lex, lx, wd)
		if !ok {
			return fmt.Errorf("material title must not be empty")
		}
		fmt.Printf("added material %q id=%s\n", m.Title, m.ID)
		return nil
	})
}

func cmdAddAssessment(args []string) error {
	fs, cfg := newFlagSet("add-assessment")
	student := fs.String("student", "", "student id the measurement belongs to")
	date := fs.String("date", time.Now().Format("2006-01-02"), "measurement date, YYYY-MM-DD")
	material := fs.String("material", "", "material id, empty for none")
	wpm := fs.String("wpm", "", "words per minute")
	comp := fs.String("comp", "", "comprehension 0-100")
	lexile := fs.String("lexile", "", "lexile level")
	lix := fs.String("lix", "", "lix level")
	stanine := fs.String("dls-stanine", "", "DLS stanine 1-9")
	percentile := fs.String("dls-percentile", "", "DLS percentile 0-100")
	notes := fs.String("notes", "", "free-form notes")
	if err := parse(fs, args); err != nil {
		return err
	}
	in := reading.NewAssessment{Date: *date, Notes: *notes}
	if *material != "" {
		in.MaterialID = ptr(*material)
	}
	var err error
	if in.WPM, err = optFloat(*wpm, "wpm"); err != nil {
		return err
	}
	if in.Comprehension, err = optFloat(*comp, "comp"); err != nil {
		return err
	}
	if in.Lexile, err = optFloat(*lexile, "lexile"); err != nil {
		return err
	}
	if in.Lix, err = optFloat(*lix, "lix"); err != nil {
		return err
	}
	if in.DLSStanine, err = optInt(*stanine, "dls-stanine"); err != nil {
		return err
	}
	if in.DLSPercentile, err = optFloat(*percentile, "dls-percentile"); err != nil {
		return err
	}
	return withStore(cfg, func(ctx context.Context, store *reading.Store) error {
		if *student == "" {
			return fmt.Errorf("select a student first: pass -student <id>")
		}
		if err := store.SelectStudent(*student); err != nil {
			return fmt.Errorf("no such student: %s", *student)
		}
		a, err := store.AddAssessment(ctx, in)
		if err != nil {
			return err
		}
		fmt.Printf("recorded assessment %s for %s on %s\n", a.ID, a.StudentID, a.Date)
		return nil
	})
}

func cmdDelete(args []string) error {
	fs, cfg := newFlagSet("delete")
	student := fs.String("student", "", "student id to delete (cascades assessments)")
	material := fs.String("material", "", "material id to delete (clears references)")
	assessment := fs.String("assessment", "", "assessment id to delete")
	if err := parse(fs, args); err != nil {
		return err
	}
	return withStore(cfg, func(ctx context.Context, store *reading.Store) error {
		switch {
		case *student != "":
			store.DeleteStudent(ctx, *student)
		case *material != "":
			store.DeleteMaterial(ctx, *material)
		case *assessment != "":
			store.DeleteAssessment(ctx, *assessment)
		default:
			return fmt.Errorf("pass one of -student, -material, -assessment")
		}
		fmt.Println("deleted")
		return nil
	})
}

func ptr[T any](v T) *T { return &v }

func optFloat(s, name string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q", name, s)
	}
	return &v, nil
}

func optInt(s, name string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q", name, s)
	}
	return &v, nil
}
