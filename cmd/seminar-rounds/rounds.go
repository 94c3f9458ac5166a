package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"seminar/grouping"
)

// promptCount asks until the answer is a non-negative integer.
func promptCount(r *bufio.Reader, out io.Writer, prompt string) (int, error) {
	for {
		fmt.Fprint(out, prompt)
		line, err := r.ReadString('\n')
		if n, ok := parseCount(line); ok {
			return n, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, fmt.Errorf("no count given: %w", io.ErrUnexpectedEOF)
			}
			return 0, err
		}
	}
}

func parseCount(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// runRounds calls MakeTeams until it fails or maxRounds rounds succeed
// (maxRounds 0 means no cap). It returns the successes and the error that
// stopped the loop, nil when the cap was reached.
func runRounds(engine *grouping.Engine, teamsCount, maxRounds int, show bool, out io.Writer) (int, error) {
	made := 0
	for maxRounds == 0 || made < maxRounds {
		p, err := engine.MakeTeams(teamsCount)
		if err != nil {
			return made, err
		}
		made++
		if show {
			fmt.Fprintf(out, "\nround %d: %v", made, p.Teams)
			continue
		}
		fmt.Fprint(out, "*")
	}
	return made, nil
}

// commonDivisors returns the positive common divisors of a and b, ascending.
func commonDivisors(a, b int) []int {
	divisors := []int{}
	for i := 1; i <= min(a, b); i++ {
		if a%i == 0 && b%i == 0 {
			divisors = append(divisors, i)
		}
	}
	return divisors
}
