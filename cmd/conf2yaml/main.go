package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/vovanwin/conf2yaml/internal/model"
	"github.com/vovanwin/conf2yaml/internal/translator"
)

func main() {
	var (
		input    string
		output   string
		settings string
	)
	flag.StringVar(&input, "i", "", "входной файл конфигурации")
	flag.StringVar(&output, "o", "", "выходной YAML файл")
	flag.StringVar(&settings, "settings", "", "TOML файл с настройками транслятора")
	flag.Parse()

	if input == "" || output == "" {
		fmt.Fprintln(os.Stderr, "использование: conf2yaml -i <input> -o <output> [-settings <file.toml>]")
		os.Exit(2)
	}

	opts := translator.DefaultOptions()
	if settings != "" {
		var err error
		opts, err = translator.LoadOptions(settings)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}

	src, err := os.ReadFile(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "чтение %s: %v\n", input, err)
		os.Exit(1)
	}

	out, diags := translator.Translate(string(src), opts)
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d)
	}
	if model.HasErrors(diags) {
		os.Exit(1)
	}

	if err := os.WriteFile(output, []byte(out), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "запись %s: %v\n", output, err)
		os.Exit(1)
	}
}
