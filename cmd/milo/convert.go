package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/go-opt/milo/mip"
	"github.com/go-opt/milo/mps"
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert [in] [out]",
	Short: "converts a model between the mps and milo formats",
	Long: `convert reads the input model and writes it under the output path,
picking both formats by file extension: .mps is the MPS exchange
format, anything else the milo binary snapshot.`,
	Run: cmdConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

func cmdConvert(cmd *cobra.Command, args []string) {
	if len(args) < 2 {
		fmt.Println("missing input or output path -- milo convert -h for help")
		os.Exit(-1)
	}
	in := filepath.Clean(args[0])
	out := filepath.Clean(args[1])

	s, meta, err := loadSession(in)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(-1)
	}
	defer s.Close()
	if meta != nil && (meta.Maximize || meta.ObjOffset != 0) {
		fmt.Println("note: the objective sense and constant are solve options and do not travel with the model")
	}

	if err := writeSession(s, out); err != nil {
		fmt.Println("error:", err)
		os.Exit(-1)
	}
	fmt.Printf("%-30s %s\n", "wrote", out)
}

func writeSession(s *mip.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	var werr error
	if filepath.Ext(path) == ".mps" {
		var m *mps.Model
		if m, werr = s.ToMPS(); werr == nil {
			werr = mps.Write(f, m)
		}
	} else {
		_, werr = s.WriteModel(f)
	}
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	return werr
}
