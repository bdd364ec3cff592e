package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/classroll/attendance-tracker/internal/application/command"
	"github.com/classroll/attendance-tracker/internal/application/query"
	"github.com/classroll/attendance-tracker/internal/infrastructure/persistence/sqlite"
)

// subcommand is one CLI verb.
type subcommand struct {
	usage string
	help  string
	run   func(ctx context.Context, a *app, args []string, out io.Writer) error
}

// commands is filled in init because the handlers refer back to it for usage text.
var commands map[string]subcommand

func init() {
	commands = map[string]subcommand{
		"init":          {"init", "create the database and schema if missing", runInit},
		"add":           {"add <name>", "register a student (letters and spaces)", runAdd},
		"list":          {"list", "list students by name", runList},
		"show":          {"show <student-id>", "show one student", runShow},
		"mark":          {"mark [-date YYYY-MM-DD] <student-id> <present|absent>", "mark one student for a day", runMark},
		"mark-all":      {"mark-all [-date YYYY-MM-DD] [-absent id,id]", "mark every student for a day", runMarkAll},
		"history":       {"history <student-id>", "show one student's attendance", runHistory},
		"records":       {"records", "show all records by student name and date", runRecords},
		"stats":         {"stats", "show database location and counts", runStats},
		"export":        {"export [-o path]", "write all records as comma separated text", runExport},
		"import-legacy": {"import-legacy <path>", "adopt students and records from an old database file", runImportLegacy},
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: attendance <command> [arguments]")
	fmt.Fprintln(w)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(tw, "  %s\t%s\n", commands[name].usage, commands[name].help)
	}
	_ = tw.Flush()
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	return nil
}

func usageError(name string) error {
	return fmt.Errorf("%w: attendance %s", errUsage, commands[name].usage)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: student id must be a number, got %q", errUsage, s)
	}
	return id, nil
}

func parseIDList(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := parseID(p)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Roster
// ──────────────────────────────────────────────────────────────────────────────

func runInit(ctx context.Context, a *app, _ []string, out io.Writer) error {
	stats, err := a.stats.Handle(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Database ready at %s\n", stats.Location)
	return nil
}

func runAdd(ctx context.Context, a *app, args []string, out io.Writer) error {
	if len(args) == 0 {
		return usageError("add")
	}
	res, err := a.addStudent.Handle(ctx, command.AddStudentCommand{
		Name:          strings.Join(args, " "),
		CorrelationID: a.requestID,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Added %s (id %d)\n", res.Student.Name, res.Student.ID)
	return nil
}

func runList(ctx context.Context, a *app, _ []string, out io.Writer) error {
	res, err := a.listStudents.Handle(ctx, query.ListStudentsQuery{})
	if err != nil {
		return err
	}
	if res.Total == 0 {
		fmt.Fprintln(out, "No students yet.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, s := range res.Students {
		fmt.Fprintf(tw, "%d\t%s\n", s.ID, s.Name)
	}
	return tw.Flush()
}

func runShow(ctx context.Context, a *app, args []string, out io.Writer) error {
	if len(args) != 1 {
		return usageError("show")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	s, err := a.getStudent.Handle(ctx, query.GetStudentQuery{StudentID: id})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d\t%s\n", s.ID, s.Name)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Ledger
// ──────────────────────────────────────────────────────────────────────────────

func runMark(ctx context.Context, a *app, args []string, out io.Writer) error {
	fs := newFlagSet("mark")
	date := fs.String("date", "", "day to mark (default today)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return usageError("mark")
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}

	res, err := a.markAttendance.Handle(ctx, command.MarkAttendanceCommand{
		StudentID:     id,
		Date:          *date,
		Status:        fs.Arg(1),
		CorrelationID: a.requestID,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Marked student %d %s on %s\n", res.Record.StudentID, res.Record.Status, res.Record.Date)
	return nil
}

func runMarkAll(ctx context.Context, a *app, args []string, out io.Writer) error {
	fs := newFlagSet("mark-all")
	date := fs.String("date", "", "day to mark (default today)")
	absent := fs.String("absent", "", "comma separated ids to mark absent")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return usageError("mark-all")
	}
	absentIDs, err := parseIDList(*absent)
	if err != nil {
		return err
	}

	res, err := a.markAll.Handle(ctx, command.MarkAllPresentCommand{
		Date:          *date,
		AbsentIDs:     absentIDs,
		CorrelationID: a.requestID,
	})
	if err != nil {
		return err
	}
	if res.Marked == 0 && res.Skipped == 0 {
		fmt.Fprintf(out, "No students to mark on %s.\n", res.Date)
		return nil
	}
	fmt.Fprintf(out, "Marked %d students on %s (%d present, %d absent, %d already marked)\n",
		res.Marked, res.Date, res.Marked-res.Absent, res.Absent, res.Skipped)
	return nil
}

func runHistory(ctx context.Context, a *app, args []string, out io.Writer) error {
	if len(args) != 1 {
		return usageError("history")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	res, err := a.history.Handle(ctx, query.GetStudentAttendanceQuery{StudentID: id})
	if err != nil {
		return err
	}
	if len(res.Records) == 0 {
		fmt.Fprintf(out, "No attendance recorded for %s.\n", res.StudentName)
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tSTATUS")
	for _, r := range res.Records {
		fmt.Fprintf(tw, "%s\t%s\n", r.Date, r.Status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %d present, %d absent\n", res.StudentName, res.Present, res.Absent)
	return nil
}

func runRecords(ctx context.Context, a *app, _ []string, out io.Writer) error {
	rows, err := a.allRecords.Handle(ctx, query.GetAllRecordsQuery{})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "No attendance records yet.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STUDENT\tDATE\tSTATUS")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.StudentName, r.Date, r.Status)
	}
	return tw.Flush()
}

// ──────────────────────────────────────────────────────────────────────────────
// Diagnostics, export, import
// ──────────────────────────────────────────────────────────────────────────────

func runStats(ctx context.Context, a *app, _ []string, out io.Writer) error {
	stats, err := a.stats.Handle(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Database: %s\nTables:   %s\nStudents: %d\nRecords:  %d\n",
		stats.Location, strings.Join(stats.Tables, ", "), stats.Students, stats.Records)
	return nil
}

func runExport(ctx context.Context, a *app, args []string, out io.Writer) error {
	fs := newFlagSet("export")
	path := fs.String("o", a.cfg.Export.Path, "output file")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	n, err := exportTo(ctx, a, *path)
	if err != nil {
		return err
	}

	if n == 0 {
		fmt.Fprintf(out, "Nothing to export; wrote header only to %s\n", *path)
		return nil
	}
	fmt.Fprintf(out, "Exported %d records to %s\n", n, *path)
	return nil
}

// exportTo writes the export next to path and renames it into place, so a
// failed export leaves the previous file untouched.
func exportTo(ctx context.Context, a *app, path string) (int, error) {
	f, err := os.CreateTemp(filepath.Dir(path), ".attendance-export-*")
	if err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}
	tmp := f.Name()
	_ = f.Chmod(0o644)

	n, err := a.export.Handle(ctx, f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("export: %w", cerr)
	}
	if err == nil {
		if rerr := os.Rename(tmp, path); rerr != nil {
			err = fmt.Errorf("export: %w", rerr)
		}
	}
	if err != nil {
		_ = os.Remove(tmp)
		return 0, err
	}
	return n, nil
}

func runImportLegacy(ctx context.Context, a *app, args []string, out io.Writer) error {
	if len(args) != 1 {
		return usageError("import-legacy")
	}
	if _, err := os.Stat(args[0]); err != nil {
		return fmt.Errorf("import-legacy: %w", err)
	}

	res, err := a.importLegacy.Handle(ctx, command.ImportLegacyCommand{
		Source:        sqlite.NewLegacySource(args[0]),
		CorrelationID: a.requestID,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Imported from %s: %d of %d students (%d rejected), %d of %d records (%d rejected)\n",
		res.Source, res.StudentsInserted, res.StudentsRead, res.StudentsRejected,
		res.RecordsInserted, res.RecordsRead, res.RecordsRejected)
	return nil
}
