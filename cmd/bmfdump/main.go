// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	bmf "github.com/pali-rohar/bmfdec"
	"github.com/pali-rohar/bmfdec/log"
)

type config struct {
	wantClasses    bool
	wantVariables  bool
	wantMethods    bool
	wantQualifiers bool
}

func main() {
	dumpCmd := flag.NewFlagSet("dump", flag.ExitOnError)
	dumpClasses := dumpCmd.Bool("classes", false, "Dump class names")
	dumpVariables := dumpCmd.Bool("variables", false, "Dump class properties")
	dumpMethods := dumpCmd.Bool("methods", false, "Dump class methods")
	dumpQualifiers := dumpCmd.Bool("qualifiers", false, "Dump qualifiers")

	verCmd := flag.NewFlagSet("version", flag.ExitOnError)

	if len(os.Args) < 2 {
		showHelp()
	}

	switch os.Args[1] {
	case "dump":
		dumpCmd.Parse(os.Args[3:])
		cfg := config{
			wantClasses:    *dumpClasses,
			wantVariables:  *dumpVariables,
			wantMethods:    *dumpMethods,
			wantQualifiers: *dumpQualifiers,
		}
		parse(os.Args[2], cfg)

	case "version":
		verCmd.Parse(os.Args[2:])
		fmt.Println("You are using version 0.1.0")
	default:
		showHelp()
	}
}

func showHelp() {
	fmt.Print(
		`
╔╗ ╔╦╗╔═╗  ┌┬┐┬ ┬┌┬┐┌─┐
╠╩╗║║║╠╣    │││ ││││├─┘
╚═╝╩ ╩╚     ┴ ┴└─┘┴ ┴┴

	A Binary MOF decoder.
`)
	fmt.Println("\nAvailable sub-commands 'dump' or 'version' subcommands")
	os.Exit(1)
}

func prettyPrint(iface interface{}) string {
	var prettyJSON bytes.Buffer
	buff, _ := json.Marshal(iface)
	if err := json.Indent(&prettyJSON, buff, "", "\t"); err != nil {
		return string(buff)
	}
	return prettyJSON.String()
}

func isDirectory(path string) bool {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fileInfo.IsDir()
}

func parse(filePath string, cfg config) {
	if !isDirectory(filePath) {
		parseBMF(filePath, cfg)
		return
	}

	fileList := []string{}
	filepath.Walk(filePath, func(path string, f os.FileInfo, err error) error {
		if !isDirectory(path) {
			fileList = append(fileList, path)
		}
		return nil
	})
	for _, file := range fileList {
		parseBMF(file, cfg)
	}
}

func parseBMF(filename string, cfg config) {
	logger := log.NewStdLogger(os.Stdout)
	logger = log.NewFilter(logger, log.FilterLevel(log.LevelInfo))
	helper := log.NewHelper(logger)

	helper.Infof("parsing filename %s", filename)

	f, err := bmf.New(filename, &bmf.Options{Logger: logger})
	if err != nil {
		helper.Infof("error while opening file: %s, reason: %s", filename, err)
		return
	}
	defer f.Close()

	if err := f.Parse(); err != nil {
		helper.Infof("error while parsing file: %s, reason: %s", filename, err)
		return
	}

	for _, class := range f.Classes {
		if cfg.wantClasses {
			fmt.Printf("\n\t------[ Class %s ]------\n\n", class.Name)
			fmt.Printf("Namespace:   %s\n", class.Namespace)
			fmt.Printf("Superclass:  %s\n", class.SuperclassName)
		}
		if cfg.wantQualifiers {
			fmt.Println(prettyPrint(class.Qualifiers))
		}
		if cfg.wantVariables {
			fmt.Println(prettyPrint(class.Variables))
		}
		if cfg.wantMethods {
			fmt.Println(prettyPrint(class.Methods))
		}
	}
}
