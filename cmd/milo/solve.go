package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/go-opt/milo/mip"
	"github.com/go-opt/milo/mps"
)

// solveCmd represents the solve command
var solveCmd = &cobra.Command{
	Use:   "solve [model.mps]",
	Short: "solves a model and prints the best solution found",
	Run:   cmdSolve,
}

var (
	fMin     bool
	fMax     bool
	fTime    float64
	fGap     float64
	fAbsGap  float64
	fNSol    int
	fOffset  float64
	fEngine  string
	fVerbose bool
)

func init() {
	rootCmd.AddCommand(solveCmd)
	solveCmd.Flags().BoolVar(&fMin, "min", false, "minimizes the objective -- overrides the sense stored in the model")
	solveCmd.Flags().BoolVar(&fMax, "max", false, "maximizes the objective -- overrides the sense stored in the model")
	solveCmd.Flags().Float64Var(&fTime, "time", 0, "caps solving wall-clock seconds")
	solveCmd.Flags().Float64Var(&fGap, "gap", 0, "stops once the relative gap reaches this")
	solveCmd.Flags().Float64Var(&fAbsGap, "absgap", 0, "stops once the absolute gap reaches this")
	solveCmd.Flags().IntVar(&fNSol, "nsol", -1, "stops after this many improving solutions")
	solveCmd.Flags().Float64Var(&fOffset, "offset", 0, "adds a constant to the objective -- overrides the constant stored in the model")
	solveCmd.Flags().StringVar(&fEngine, "engine", "", "selects the solver engine")
	solveCmd.Flags().BoolVar(&fVerbose, "verbose", false, "streams engine progress")
}

func cmdSolve(cmd *cobra.Command, args []string) {
	if len(args) < 1 {
		fmt.Println("missing model path -- milo solve -h for help")
		os.Exit(-1)
	}
	if fMin && fMax {
		fmt.Println("--min and --max exclude each other")
		os.Exit(-1)
	}
	path := filepath.Clean(args[0])

	s, meta, err := loadSession(path, sessionOptions()...)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(-1)
	}
	defer s.Close()
	fmt.Printf("%-30s %-30s %d variables, %d constraints\n", "loaded model", path, len(s.Vars()), len(s.Cons()))

	// the exchange metadata provides the defaults, flags override
	maximize := false
	offset := 0.0
	if meta != nil {
		maximize = meta.Maximize
		offset = meta.ObjOffset
	}
	if fMin {
		maximize = false
	}
	if fMax {
		maximize = true
	}
	if cmd.Flags().Changed("offset") {
		offset = fOffset
	}

	opts := solveOptions(cmd.Flags(), offset)
	var sol *mip.Solution
	if maximize {
		sol, err = s.Maximize(opts...)
	} else {
		sol, err = s.Minimize(opts...)
	}
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(-1)
	}

	fmt.Printf("%-30s %s\n", "status", sol.Status())
	if !sol.Feasible() {
		return
	}
	fmt.Printf("%-30s %v\n", "objective", sol.Objective())
	fmt.Printf("%-30s %v\n", "best bound", sol.Bound())
	printNonzero(sol)
}

// loadSession builds a session from a model file, picking the format by
// extension. For MPS input the parsed model is returned as well: it
// carries the exchange metadata a session does not hold, the objective
// sense and constant.
func loadSession(path string, opts ...mip.Option) (*mip.Session, *mps.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	if filepath.Ext(path) == ".mps" {
		m, err := mps.Read(f)
		if err != nil {
			return nil, nil, err
		}
		s, err := mip.FromMPS(m, opts...)
		if err != nil {
			return nil, nil, err
		}
		return s, m, nil
	}
	s, err := mip.ReadModel(f, opts...)
	if err != nil {
		return nil, nil, err
	}
	return s, nil, nil
}

func sessionOptions() []mip.Option {
	var opts []mip.Option
	if fEngine != "" {
		opts = append(opts, mip.WithSolver(fEngine))
	}
	if fVerbose {
		opts = append(opts, mip.Verbose())
	}
	return opts
}

// solveOptions forwards only the limits the user set; everything else
// keeps the engine defaults.
func solveOptions(flags *pflag.FlagSet, offset float64) []mip.SolveOption {
	opts := []mip.SolveOption{mip.WithOffset(offset)}
	if flags.Changed("time") {
		opts = append(opts, mip.WithTime(fTime))
	}
	if flags.Changed("gap") {
		opts = append(opts, mip.WithGap(fGap))
	}
	if flags.Changed("absgap") {
		opts = append(opts, mip.WithAbsGap(fAbsGap))
	}
	if flags.Changed("nsol") {
		opts = append(opts, mip.WithSolutions(fNSol))
	}
	return opts
}

func printNonzero(sol *mip.Solution) {
	nz := sol.Nonzero()
	names := make([]string, 0, len(nz))
	byName := make(map[string]float64, len(nz))
	for v, val := range nz {
		names = append(names, v.Name())
		byName[v.Name()] = val
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-28s %v\n", name, byName[name])
	}
}
