package main

import (
	"fmt"

	"github.com/fwojciec/dealrater"
)

// Run executes the detect command.
func (c *DetectCmd) Run(deps *Dependencies) error {
	html, err := readHTML(deps, c.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dealrater.ErrorMessage(err))
		return err
	}

	brand := deps.Detector.Detect(html)
	if brand == "" {
		err := dealrater.Errorf(dealrater.ENOTFOUND, "no template matches %s", c.File)
		fmt.Fprintf(deps.Stderr, "error: %s\n", dealrater.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, brand)
	return nil
}
