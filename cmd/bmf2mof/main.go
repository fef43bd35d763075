// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	bmf "github.com/pali-rohar/bmfdec"
	"github.com/spf13/cobra"
)

func isDirectory(path string) bool {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fileInfo.IsDir()
}

func decompile(filename string) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		log.Printf("error while reading file: %s, reason: %s", filename, err)
		return
	}

	model, err := bmf.Parse(data, nil)
	if err != nil {
		log.Printf("error while parsing file: %s, reason: %s", filename, err)
		return
	}
	defer bmf.Release(model)

	if err := bmf.WriteMOF(os.Stdout, model); err != nil {
		log.Printf("error while emitting MOF source for file: %s, reason: %s", filename, err)
	}
}

func decompileCmd(cmd *cobra.Command, args []string) {
	filePath := args[0]

	if !isDirectory(filePath) {
		decompile(filePath)
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
		decompile(file)
	}
}

func main() {
	var rootCmd = &cobra.Command{
		Use:   "bmf2mof",
		Short: "A Binary MOF decompiler",
		Long:  "Decompiles a Binary MOF (BMF) file into UTF-8 plain text MOF source",
		Run: func(cmd *cobra.Command, args []string) {
		},
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Long:  "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print("You are using version 0.1.0")
		},
	}

	var decompileCommand = &cobra.Command{
		Use:   "decompile",
		Short: "Decompiles the file",
		Long:  "Decompiles a Binary MOF file into textual MOF source",
		Args:  cobra.MinimumNArgs(1),
		Run:   decompileCmd,
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(decompileCommand)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
