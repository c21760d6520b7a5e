package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	"github.com/composable-auto-assessment/generator/fingerprint"
	"github.com/composable-auto-assessment/generator/storage/casregistry"
	"github.com/composable-auto-assessment/generator/storage/grpccas"

	_ "github.com/composable-auto-assessment/generator/storage/localfs"
)

func main() {
	fs := flag.NewFlagSet("qrgen-archived", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7777", "listen address")
	backend := fs.String("backend", "localfs", "Archive backend name")
	algName := fs.String("algorithm", string(fingerprint.Default), "Fingerprint algorithm for stored objects (shake128, blake3)")
	listBackends := fs.Bool("list-backends", false, "List supported backends and exit")

	casregistry.RegisterFlags(fs, casregistry.UsageDaemon)

	_ = fs.Parse(os.Args[1:])
	if *listBackends {
		for _, b := range casregistry.List(casregistry.UsageDaemon) {
			if b.Description == "" {
				_, _ = fmt.Fprintf(os.Stdout, "%s\n", b.Name)
				continue
			}
			_, _ = fmt.Fprintf(os.Stdout, "%s\t%s\n", b.Name, b.Description)
		}
		return
	}

	log := logrus.New()
	alg, err := fingerprint.ParseAlgorithm(*algName)
	if err != nil {
		log.Fatal(err)
	}

	cas, closeFn, err := casregistry.Open(*backend, casregistry.UsageDaemon, casregistry.Options{Algorithm: alg})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if closeFn != nil {
		defer closeFn()
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		log.Fatal(err)
	}
	defer lis.Close()

	s := grpc.NewServer()
	grpccas.RegisterArchiveServer(s, &grpccas.Server{CAS: cas})

	log.WithFields(logrus.Fields{
		"addr":      lis.Addr().String(),
		"backend":   *backend,
		"algorithm": string(alg),
	}).Info("archive service listening")
	if err := s.Serve(lis); err != nil {
		log.Fatal(err)
	}
}
