// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// rtbcrypto-bench self-checks the crypto core against its literal test
// vectors, then exercises all four payload codecs concurrently and
// reports throughput.
package main

import (
	"encoding/base64"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bidcore/rtbcrypto/crypto/container"
	"github.com/bidcore/rtbcrypto/crypto/iv"
	"github.com/bidcore/rtbcrypto/crypto/keymaterial"
	"github.com/bidcore/rtbcrypto/crypto/payload"
	"github.com/bidcore/rtbcrypto/log"
	"github.com/bidcore/rtbcrypto/must"
	"github.com/bidcore/rtbcrypto/rtberrors"
	"github.com/bidcore/rtbcrypto/traverse"
)

const (
	testEncryptionKeyB64 = "sIxwz7yw62yrfoLGt12lIHKuYrK/S5kLuApI2BQe7Ac="
	testIntegrityKeyB64  = "v3fsVcMBMMHYzRhi7SpM0sdqwzvAxM6KPTu9OtVod5I="
	testIVHex            = "E679B0BE000CD1400123456789ABCDEF"
)

func main() {
	iterations := flag.Int("iterations", 10000, "number of concurrent encrypt/decrypt cycles to run per codec")
	concurrency := flag.Int("concurrency", 0, "concurrency limit; zero means runtime.NumCPU()")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `usage: rtbcrypto-bench [-iterations N] [-concurrency N]

rtbcrypto-bench verifies the crypto core against its published test
vectors, then drives the Price, AdId, Idfa, and Hyperlocal codecs
concurrently to report throughput and surface any data races under -race.
`)
		os.Exit(2)
	}
	flag.Parse()

	checkVectors()
	log.Print("vector self-check passed")

	c := mustContainer()
	v := mustIV()

	codecs := []struct {
		name string
		run  func(i int) error
	}{
		{"price", pricer(c, v)},
		{"adid", adIder(c, v)},
		{"idfa", idfaer(c, v)},
		{"hyperlocal", hyperlocaler(c, v)},
	}

	for _, cd := range codecs {
		trav := traverse.Each(*iterations)
		if *concurrency > 0 {
			trav = trav.Limit(*concurrency)
		} else {
			trav = traverse.Parallel(*iterations)
		}
		start := time.Now()
		err := trav.Do(cd.run)
		must.Nil(err, "codec", cd.name)
		elapsed := time.Since(start)
		log.Printf("%s: %d round trips in %s (%.0f/s)", cd.name, *iterations, elapsed, float64(*iterations)/elapsed.Seconds())
	}

	must.Nil(runErrgroupSmokeTest(c, v))
	log.Print("errgroup smoke test passed")
}

func mustContainer() *container.T {
	ek, err := base64.StdEncoding.DecodeString(testEncryptionKeyB64)
	must.Nil(err, "decode encryption key")
	ik, err := base64.StdEncoding.DecodeString(testIntegrityKeyB64)
	must.Nil(err, "decode integrity key")
	km, err := keymaterial.New(ek, ik)
	must.Nil(err, "build key material")
	return container.New(km)
}

func mustIV() iv.T {
	b, err := hex.DecodeString(testIVHex)
	must.Nil(err, "decode iv")
	v, err := iv.FromBytes(b)
	must.Nil(err, "build iv")
	return v
}

func pricer(c *container.T, v iv.T) func(i int) error {
	p := payload.NewPrice(c)
	return func(i int) error {
		micros := uint64(i) * 1000
		cipher, err := p.Encrypt(micros, &v)
		if err != nil {
			return err
		}
		got, err := p.Decrypt(cipher)
		if err != nil {
			return err
		}
		if got != micros {
			return rtberrors.New("price round trip mismatch")
		}
		return nil
	}
}

func adIder(c *container.T, v iv.T) func(i int) error {
	a := payload.NewAdId(c)
	return func(i int) error {
		id := make([]byte, 16)
		for j := range id {
			id[j] = byte(i + j)
		}
		cipher, err := a.Encrypt(id, &v)
		if err != nil {
			return err
		}
		got, err := a.Decrypt(cipher)
		if err != nil {
			return err
		}
		if !bytesEqual(id, got) {
			return rtberrors.New("adid round trip mismatch")
		}
		return nil
	}
}

func idfaer(c *container.T, v iv.T) func(i int) error {
	idf := payload.NewIdfa(c)
	return func(i int) error {
		blob := make([]byte, 8+(i%32))
		for j := range blob {
			blob[j] = byte(i * j)
		}
		cipher, err := idf.Encrypt(blob, &v)
		if err != nil {
			return err
		}
		got, err := idf.Decrypt(cipher)
		if err != nil {
			return err
		}
		if !bytesEqual(blob, got) {
			return rtberrors.New("idfa round trip mismatch")
		}
		return nil
	}
}

func hyperlocaler(c *container.T, v iv.T) func(i int) error {
	h := payload.NewHyperlocal(c)
	return func(i int) error {
		blob := make([]byte, 40)
		for j := range blob {
			blob[j] = byte(i - j)
		}
		encoded, err := h.EncodeHyperlocal(blob, &v)
		if err != nil {
			return err
		}
		got, err := h.DecodeHyperlocal(encoded)
		if err != nil {
			return err
		}
		if !bytesEqual(blob, got) {
			return rtberrors.New("hyperlocal round trip mismatch")
		}
		return nil
	}
}

// runErrgroupSmokeTest fans a small batch of price encryptions out across
// an errgroup, so the binary that uses traverse for its main benchmark
// loop also exercises the pack's other concurrency idiom.
func runErrgroupSmokeTest(c *container.T, v iv.T) error {
	var g errgroup.Group
	p := payload.NewPrice(c)
	for i := 0; i < 64; i++ {
		micros := uint64(i)
		g.Go(func() error {
			cipher, err := p.Encrypt(micros, &v)
			if err != nil {
				return err
			}
			got, err := p.Decrypt(cipher)
			if err != nil {
				return err
			}
			if got != micros {
				return rtberrors.New("errgroup price round trip mismatch")
			}
			return nil
		})
	}
	return g.Wait()
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// checkVectors verifies the package's literal published test vectors,
// failing fast (before the throughput run) if the algorithm has drifted
// from wire compatibility with the counterparty.
func checkVectors() {
	c := mustContainer()
	v := mustIV()

	p := payload.NewPrice(c)
	got, err := p.EncodePrice(710000000, &v)
	must.Nil(err, "price vector")
	must.Truef(got == "5nmwvgAM0UABI0VniavN72_sy3TQFLWhVys-IA", "price vector mismatch: %s", got)

	idf := payload.NewIdfa(c)
	idfaBytes, err := hex.DecodeString("0001020304050607")
	must.Nil(err, "idfa vector bytes")
	got, err = idf.EncodeIdfa(idfaBytes, &v)
	must.Nil(err, "idfa vector")
	must.Truef(got == "5nmwvgAM0UABI0VniavN72_tyXf-QJOmeDOf7A", "idfa vector mismatch: %s", got)

	a := payload.NewAdId(c)
	adIDBytes, err := hex.DecodeString("000102030405060708090A0B0C0D0E0F")
	must.Nil(err, "adid vector bytes")
	cipher, err := a.Encrypt(adIDBytes, &v)
	must.Nil(err, "adid vector")
	want, err := hex.DecodeString("E679B0BE000CD1400123456789ABCDEF6FEDC977FE4093A641D2F4B6687F7DDB81DA0A3F")
	must.Nil(err, "adid vector want")
	must.True(bytesEqual(cipher, want), "adid vector mismatch")

	tampered, err := base64.RawURLEncoding.DecodeString("5nmwvgAM0UABI0VniavN72_sy3TQFLWhVys-IA")
	must.Nil(err, "tamper vector decode")
	tampered[len(tampered)-1] ^= 0x01
	_, err = p.Decrypt(tampered)
	must.Truef(rtberrors.Is(rtberrors.SignatureMismatch, err), "tamper vector did not yield SignatureMismatch: %v", err)
}
