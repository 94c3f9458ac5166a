package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"seminar/grouping"
)

func TestCommonDivisors(t *testing.T) {
	for _, tc := range []struct {
		a, b int
		want []int
	}{
		{a: 4, b: 2, want: []int{1, 2}},
		{a: 12, b: 18, want: []int{1, 2, 3, 6}},
		{a: 7, b: 3, want: []int{1}},
		{a: 10, b: 0, want: []int{}},
		{a: 0, b: 0, want: []int{}},
	} {
		require.Equal(t, tc.want, commonDivisors(tc.a, tc.b), "commonDivisors(%d, %d)", tc.a, tc.b)
	}
}

func TestParseCount(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want int
		ok   bool
	}{
		{in: "12\n", want: 12, ok: true},
		{in: " 0 ", want: 0, ok: true},
		{in: "-3", ok: false},
		{in: "3.5", ok: false},
		{in: "", ok: false},
		{in: "ten", ok: false},
	} {
		got, ok := parseCount(tc.in)
		require.Equal(t, tc.ok, ok, "parseCount(%q)", tc.in)
		require.Equal(t, tc.want, got, "parseCount(%q)", tc.in)
	}
}

func TestPromptCountRetries(t *testing.T) {
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader("abc\n-1\n6\n"))

	n, err := promptCount(r, &out, "> ")
	require.NoError(t, err)
	require.Equal(t, 6, n)
	require.Equal(t, "> > > ", out.String())
}

func TestPromptCountEOF(t *testing.T) {
	var out bytes.Buffer
	_, err := promptCount(bufio.NewReader(strings.NewReader("x\n")), &out, "> ")
	require.Error(t, err)

	n, err := promptCount(bufio.NewReader(strings.NewReader("8")), &out, "> ")
	require.NoError(t, err)
	require.Equal(t, 8, n)
}

func TestRunRounds(t *testing.T) {
	engine, err := grouping.New(4)
	require.NoError(t, err)

	var out bytes.Buffer
	made, err := runRounds(engine, 2, 0, false, &out)
	require.ErrorIs(t, err, grouping.ErrAssignmentFailure)
	require.Equal(t, 3, made)
	require.Equal(t, "***", out.String())
}

func TestRunRoundsCapped(t *testing.T) {
	engine, err := grouping.New(4)
	require.NoError(t, err)

	var out bytes.Buffer
	made, err := runRounds(engine, 4, 5, true, &out)
	require.NoError(t, err)
	require.Equal(t, 5, made)
	require.Contains(t, out.String(), "round 5: [[0] [1] [2] [3]]")
}

func TestRootCommand(t *testing.T) {
	t.Run("flags", func(t *testing.T) {
		var out bytes.Buffer
		cmd := newRootCommand(strings.NewReader(""), &out)
		cmd.SetArgs([]string{"--participants", "4", "--teams", "2"})
		require.NoError(t, cmd.Execute())

		require.Contains(t, out.String(), "***\n3 rounds were made.\n")
		require.Contains(t, out.String(), "4 and 2 have 2 common divisors.\n[1 2]\n")
	})

	t.Run("prompted", func(t *testing.T) {
		var out bytes.Buffer
		cmd := newRootCommand(strings.NewReader("nine\n9\n3\n"), &out)
		cmd.SetArgs([]string{})
		require.NoError(t, cmd.Execute())

		require.Contains(t, out.String(), "Enter the number of participants: ")
		require.Contains(t, out.String(), "\n2 rounds were made.\n")
		require.Contains(t, out.String(), "9 and 3 have 2 common divisors.\n[1 3]\n")
	})

	t.Run("uneven teams end the loop", func(t *testing.T) {
		var out bytes.Buffer
		cmd := newRootCommand(strings.NewReader(""), &out)
		cmd.SetArgs([]string{"--participants", "10", "--teams", "3"})
		require.NoError(t, cmd.Execute())
		require.Contains(t, out.String(), "\n0 rounds were made.\n")
	})

	t.Run("empty population", func(t *testing.T) {
		var out bytes.Buffer
		cmd := newRootCommand(strings.NewReader(""), &out)
		cmd.SetArgs([]string{"--participants", "0", "--teams", "1"})
		err := cmd.Execute()
		require.ErrorIs(t, err, grouping.ErrInvalidArgument)
	})
}
