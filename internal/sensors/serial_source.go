// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/gesture_lock/internal/motion"
)

// TypeACC is the proprietary sentence type sent by the accelerometer board:
//
//	$PACC,<x>,<y>,<z>*hh
//
// with x, y, z in m/s².
const TypeACC = "ACC"

// sampleQuery asks the board for one fresh reading.
const sampleQuery = "?\n"

// maxSkippedLines bounds how much noise Sample tolerates before giving up.
const maxSkippedLines = 64

// ACC is a parsed accelerometer sentence.
type ACC struct {
	nmea.BaseSentence
	X float64
	Y float64
	Z float64
}

func parseACC(s nmea.BaseSentence) (nmea.Sentence, error) {
	p := nmea.NewParser(s)
	p.AssertType(TypeACC)
	return ACC{
		BaseSentence: s,
		X:            p.Float64(0, "x"),
		Y:            p.Float64(1, "y"),
		Z:            p.Float64(2, "z"),
	}, p.Err()
}

// serialSource polls an accelerometer board over a serial line.
type serialSource struct {
	port   io.ReadWriter
	reader *bufio.Reader
	parser *nmea.SentenceParser
}

// NewSerialSource opens portName at baud and returns a Sampler reading
// $PACC sentences from it.
func NewSerialSource(portName string, baud uint) (motion.Sampler, io.Closer, error) {
	opts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              baud,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("serial: open %s: %w", portName, err)
	}
	log.Printf("serial: accelerometer board on %s at %d baud", portName, baud)
	return newSerialSource(port), port, nil
}

func newSerialSource(port io.ReadWriter) *serialSource {
	return &serialSource{
		port:   port,
		reader: bufio.NewReader(port),
		parser: &nmea.SentenceParser{
			CustomParsers: map[string]nmea.ParserFunc{
				TypeACC: parseACC,
			},
		},
	}
}

// Sample requests a reading and returns the first valid ACC sentence.
// Noise, other sentence types and bad checksums are skipped.
func (s *serialSource) Sample() (motion.Sample, error) {
	if _, err := io.WriteString(s.port, sampleQuery); err != nil {
		return motion.Sample{}, fmt.Errorf("serial query: %w", err)
	}

	for skipped := 0; skipped < maxSkippedLines; skipped++ {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return motion.Sample{}, fmt.Errorf("serial read: %w", err)
		}

		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := s.parser.Parse(line)
		if err != nil {
			continue
		}
		acc, ok := sentence.(ACC)
		if !ok {
			continue
		}
		return motion.Sample{X: acc.X, Y: acc.Y, Z: acc.Z}, nil
	}
	return motion.Sample{}, fmt.Errorf("serial: no %s sentence within %d lines", TypeACC, maxSkippedLines)
}
