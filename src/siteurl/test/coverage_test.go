package test

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"git.agora.community/agora/agora/src/ansicolor"
	"github.com/stretchr/testify/require"
)

/*
These tests live in a separate package so that we can run the siteurl package
tests without recursively invoking ourselves.
*/

// Every url Build function must be exercised by the siteurl tests. Routes get
// added in pairs (a Regex and a Build function), and this catches the case
// where someone adds the pair but forgets the test.
func TestEveryBuildFuncIsTested(t *testing.T) {
	covFilePath := filepath.Join(t.TempDir(), "coverage.out")

	run(t, "run siteurl tests", exec.Command("go", "test", "./..", "-coverprofile="+covFilePath))
	report := run(t, "summarize coverage", exec.Command("go", "tool", "cover", "-func="+covFilePath))

	// Lines look like:
	//   git.agora.community/agora/agora/src/siteurl/urls.go:20:	BuildHomepage	100.0%
	funcLine := regexp.MustCompile(`(?P<name>\w+)\t+(?P<percent>[\d.]+)%$`)

	var untested []string
	scanner := bufio.NewScanner(bytes.NewReader(report))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "total") {
			continue
		}

		matches := funcLine.FindStringSubmatch(line)
		require.NotNil(t, matches, "could not parse coverage line %q", line)

		name := matches[funcLine.SubexpIndex("name")]
		percent := matches[funcLine.SubexpIndex("percent")]
		if strings.HasPrefix(name, "Build") && percent == "0.0" {
			untested = append(untested, name)
		}
	}
	require.NoError(t, scanner.Err())

	if len(untested) > 0 {
		t.Fatalf("url Build functions with no test coverage:\n\t%s", strings.Join(untested, "\n\t"))
	}
}

// run executes cmd, echoing its output to the terminal, and returns the
// captured stdout.
func run(t *testing.T, what string, cmd *exec.Cmd) []byte {
	t.Helper()

	var stdout bytes.Buffer
	cmd.Stdout = io.MultiWriter(os.Stdout, &stdout)
	cmd.Stderr = os.Stderr

	fmt.Println(ansicolor.Gray + ansicolor.Italic + cmd.String() + ansicolor.Reset)
	fmt.Print(ansicolor.Gray)
	err := cmd.Run()
	fmt.Print(ansicolor.Reset)
	require.NoError(t, err, "failed to %s", what)

	return stdout.Bytes()
}
