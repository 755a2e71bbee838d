// SPDX-License-Identifier: MIT

// Package buildinfo holds values stamped at link time:
//
//	go build -ldflags "-X github.com/katalvlaran/rbcm/internal/buildinfo.BuildTag=v1.2.0"
package buildinfo

import "fmt"

var (
	BuildTag = "v0.0.0"
	Name     = "rbcm"
	Time     = ""
)

type buildinfo struct{}

func (buildinfo) Tag() string {
	return BuildTag
}

func (buildinfo) Name() string {
	return Name
}

func (buildinfo) Time() string {
	return Time
}

// String renders "name tag (time)", omitting an empty time.
func (b buildinfo) String() string {
	if b.Time() == "" {
		return fmt.Sprintf("%s %s", b.Name(), b.Tag())
	}

	return fmt.Sprintf("%s %s (%s)", b.Name(), b.Tag(), b.Time())
}

var Info buildinfo
