// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ScanQuery Contributors

//go:build integration

package kvengine_test

import (
	"context"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/scanquery/scanquery/internal/kvengine"
)

var _ = Describe("Secondary-mode open retry", func() {
	var dataDir, scratchDir string

	BeforeEach(func() {
		dataDir = GinkgoT().TempDir()
		scratchDir = GinkgoT().TempDir()
	})

	It("retries until a transient primary lock clears", func() {
		primary, err := badger.Open(badger.DefaultOptions(dataDir))
		Expect(err).NotTo(HaveOccurred())

		go func() {
			defer GinkgoRecover()
			time.Sleep(50 * time.Millisecond)
			Expect(primary.Close()).To(Succeed())
		}()

		inst, err := kvengine.Open(context.Background(), kvengine.Config{
			Dir:                dataDir,
			Mode:               kvengine.ModeSecondary,
			SecondaryDir:       scratchDir,
			OpenRetryAttempts:  10,
			OpenRetryBaseDelay: 20 * time.Millisecond,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Close()).To(Succeed())
	})

	It("gives up after exhausting retry attempts against a permanently locked primary", func() {
		primary, err := badger.Open(badger.DefaultOptions(dataDir))
		Expect(err).NotTo(HaveOccurred())
		defer primary.Close()

		_, err = kvengine.Open(context.Background(), kvengine.Config{
			Dir:                dataDir,
			Mode:               kvengine.ModeSecondary,
			SecondaryDir:       scratchDir,
			OpenRetryAttempts:  2,
			OpenRetryBaseDelay: 5 * time.Millisecond,
		})
		Expect(err).To(HaveOccurred())
	})
})
