package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin"
	"github.com/fatih/color"

	"github.com/oasvalidator/oasvalidator/dialect"
	"github.com/oasvalidator/oasvalidator/document"
	"github.com/oasvalidator/oasvalidator/validation"
)

const version = "0.1.0"

func main() {
	if err := realMain(); err != nil {
		fmt.Fprint(os.Stderr, fmt.Sprintf("error: %v\n", err))
		os.Exit(1)
	}
}

func realMain() error {
	app := kingpin.New("oas-validate", "oas-validate checks an OpenAPI document against its schema grammar and structural rules.").Version(version)
	specFile := app.Arg("spec-file", "The OpenAPI document to validate.").Default("openapi.yaml").File()
	baseURI := app.Flag("base-uri", "Base URI for resolving relative references. Defaults to the spec file's own location.").String()
	stopOnError := app.Flag("stop-on-error", "Stop validation after the first error.").Bool()
	disableFormats := app.Flag("disable-format-checks", "Turn off string format validation.").Bool()

	_, err := app.Parse(os.Args[1:])
	if err != nil {
		return err
	}

	defer (*specFile).Close()

	if *disableFormats {
		dialect.SetFormatChecks(false)
	}

	data, err := io.ReadAll(*specFile)
	if err != nil {
		return fmt.Errorf("read: %v", err)
	}

	doc, err := document.Load(data)
	if err != nil {
		return fmt.Errorf("parse: %v", err)
	}

	uri := *baseURI
	if uri == "" {
		if abs, err := filepath.Abs((*specFile).Name()); err == nil {
			uri = "file://" + abs
		}
	}

	validator := validation.NewSpecValidator()

	if *stopOnError {
		if err := validator.Validate(doc, uri); err != nil {
			return err
		}

		fmt.Printf("OpenAPI document is valid!\n")
		return nil
	}

	errs, err := validator.Errors(doc, uri)
	if err != nil {
		return err
	}

	if len(errs) == 0 {
		fmt.Printf("OpenAPI document is valid!\n")
		return nil
	}

	fmt.Printf("Found %d errors\n\n", len(errs))

	kind := color.New(color.FgRed).SprintFunc()
	for i, e := range errs {
		fmt.Printf("%d) %s: %s\n", i+1, kind(e.Kind.String()), e.Message)
	}

	fmt.Printf("\n")
	return fmt.Errorf("document has %d validation errors", len(errs))
}
