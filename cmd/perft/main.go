package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/benbeisheim/chesscore/internal/logging"
	"github.com/benbeisheim/chesscore/internal/model"
	"github.com/dustin/go-humanize"
	"github.com/pkg/profile"
	"github.com/schollz/progressbar/v3"
)

func main() {
	depth := flag.Int("depth", 3, "search depth")
	mode := flag.Int("mode", 0, "board orientation, 0 or 1")
	divide := flag.Bool("divide", false, "print the node count below every root move")
	profileDir := flag.String("profile", "", "write a cpu profile to this directory")
	flag.Parse()

	logger := logging.DefaultLogger
	if *depth < 1 {
		logger.Println("depth must be at least 1")
		os.Exit(2)
	}
	if !model.GameMode(*mode).IsValid() {
		logger.Println("mode must be 0 or 1")
		os.Exit(2)
	}
	if *profileDir != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*profileDir)).Stop()
	}

	board := model.NewStandardBoard(model.GameMode(*mode))
	roots, err := model.RootMoves(board, model.White)
	if err != nil {
		logger.Println(err)
		os.Exit(1)
	}

	start := time.Now()
	bar := progressbar.Default(int64(len(roots)), fmt.Sprintf("perft %d", *depth))
	var total uint64
	lines := []string{}
	for _, root := range roots {
		from := root.Piece.Position
		n, err := model.PerftRoot(board, root, *depth)
		if err != nil {
			bar.Finish()
			logger.Printf("%s%s: %v", board.SquareNotation(from), board.SquareNotation(root.To), err)
			os.Exit(1)
		}
		total += n
		if *divide {
			lines = append(lines, fmt.Sprintf("%s%s: %s", board.SquareNotation(from), board.SquareNotation(root.To), humanize.Comma(int64(n))))
		}
		bar.Add(1)
	}
	bar.Finish()

	for _, line := range lines {
		fmt.Println(line)
	}
	elapsed := time.Since(start)
	perSecond := float64(total) / elapsed.Seconds()
	fmt.Printf("nodes %s in %v (%s/s)\n", humanize.Comma(int64(total)), elapsed.Round(time.Millisecond), humanize.Comma(int64(perSecond)))
}
