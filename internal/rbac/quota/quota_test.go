// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package quota_test

import (
	"context"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/plexrbac/engine/internal/rbac/apperr"
	"github.com/plexrbac/engine/internal/rbac/model"
	"github.com/plexrbac/engine/internal/rbac/quota"
	"github.com/plexrbac/engine/internal/rbac/store"
	"github.com/plexrbac/engine/internal/rbac/storetest"
)

func TestQuota(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Quota Enforcer Suite")
}

var _ = Describe("Quota Enforcer", func() {
	var (
		ctx        context.Context
		sec        model.SecurityContext
		enforcer   *quota.Enforcer
		resources  *store.ResourceRepository
		orgs       *store.OrganizationRepository
		licenses   *store.LicensePolicyRepository
		principals *store.PrincipalRepository
		quotas     *store.ResourceQuotaRepository
		instances  *store.ResourceInstanceRepository
	)

	BeforeEach(func() {
		ctx = context.Background()
		sec = model.SecurityContext{PrincipalID: "test-actor"}
	})

	Describe("S5 — quota cap", func() {
		It("rejects a second completed instance once max_value is reached", func() {
			gdb := storetest.NewDB(GinkgoT())
			resources = store.NewResourceRepository(gdb)
			orgs = store.NewOrganizationRepository(gdb)
			licenses = store.NewLicensePolicyRepository(gdb)
			principals = store.NewPrincipalRepository(gdb)
			quotas = store.NewResourceQuotaRepository(gdb)
			instances = store.NewResourceInstanceRepository(gdb)
			enforcer = quota.New(principals, licenses, instances)

			org, err := orgs.Create(ctx, &model.Organization{Name: "ABC"}, "setup")
			Expect(err).NotTo(HaveOccurred())
			policy, err := licenses.Create(ctx, &model.LicensePolicy{
				OrganizationID: org.ID, Name: "ABC Plan",
				EffectiveAt: time.Now().UTC().AddDate(-1, 0, 0), ExpiredAt: time.Now().UTC().AddDate(1, 0, 0),
			}, "setup")
			Expect(err).NotTo(HaveOccurred())
			res, err := resources.Create(ctx, &model.Resource{RealmID: "r", ResourceName: "Project"}, "setup")
			Expect(err).NotTo(HaveOccurred())
			_, err = quotas.Create(ctx, &model.ResourceQuota{
				ResourceID: res.ID, LicensePolicyID: policy.ID, Scope: "ABC Project", MaxValue: 1,
				EffectiveAt: time.Now().UTC().AddDate(-1, 0, 0), ExpiredAt: time.Now().UTC().AddDate(1, 0, 0),
			}, "setup")
			Expect(err).NotTo(HaveOccurred())
			p, err := principals.Create(ctx, &model.Principal{OrganizationID: org.ID, Username: "u"}, "setup")
			Expect(err).NotTo(HaveOccurred())
			sec.PrincipalID = p.ID

			_, err = enforcer.Create(ctx, sec, &model.ResourceInstance{
				ResourceID: res.ID, Scope: "ABC Project", RefID: "ref-1", Status: model.StatusCompleted,
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = enforcer.Create(ctx, sec, &model.ResourceInstance{
				ResourceID: res.ID, Scope: "ABC Project", RefID: "ref-2", Status: model.StatusCompleted,
			})
			Expect(err).To(HaveOccurred())
			Expect(apperr.Is(err, apperr.QuotaExceeded)).To(BeTrue())
		})
	})

	Describe("S6 — recent in-flight counting", func() {
		It("counts recent in-flight instances against the cap, but not stale ones", func() {
			gdb := storetest.NewDB(GinkgoT())
			resources = store.NewResourceRepository(gdb)
			orgs = store.NewOrganizationRepository(gdb)
			licenses = store.NewLicensePolicyRepository(gdb)
			principals = store.NewPrincipalRepository(gdb)
			quotas = store.NewResourceQuotaRepository(gdb)
			instances = store.NewResourceInstanceRepository(gdb)
			enforcer = quota.New(principals, licenses, instances)

			org, err := orgs.Create(ctx, &model.Organization{Name: "ABC"}, "setup")
			Expect(err).NotTo(HaveOccurred())
			policy, err := licenses.Create(ctx, &model.LicensePolicy{
				OrganizationID: org.ID, Name: "ABC Plan",
				EffectiveAt: time.Now().UTC().AddDate(-1, 0, 0), ExpiredAt: time.Now().UTC().AddDate(1, 0, 0),
			}, "setup")
			Expect(err).NotTo(HaveOccurred())
			res, err := resources.Create(ctx, &model.Resource{RealmID: "r", ResourceName: "Project"}, "setup")
			Expect(err).NotTo(HaveOccurred())
			_, err = quotas.Create(ctx, &model.ResourceQuota{
				ResourceID: res.ID, LicensePolicyID: policy.ID, Scope: "S6", MaxValue: 2,
				EffectiveAt: time.Now().UTC().AddDate(-1, 0, 0), ExpiredAt: time.Now().UTC().AddDate(1, 0, 0),
			}, "setup")
			Expect(err).NotTo(HaveOccurred())
			p, err := principals.Create(ctx, &model.Principal{OrganizationID: org.ID, Username: "u"}, "setup")
			Expect(err).NotTo(HaveOccurred())
			sec.PrincipalID = p.ID

			_, err = enforcer.Create(ctx, sec, &model.ResourceInstance{ResourceID: res.ID, Scope: "S6", RefID: "a", Status: model.StatusInflight})
			Expect(err).NotTo(HaveOccurred())
			_, err = enforcer.Create(ctx, sec, &model.ResourceInstance{ResourceID: res.ID, Scope: "S6", RefID: "b", Status: model.StatusInflight})
			Expect(err).NotTo(HaveOccurred())

			_, err = enforcer.Create(ctx, sec, &model.ResourceInstance{ResourceID: res.ID, Scope: "S6", RefID: "c", Status: model.StatusInflight})
			Expect(err).To(HaveOccurred())
			Expect(apperr.Is(err, apperr.QuotaExceeded)).To(BeTrue())

			// Age instance "a" past the one-hour in-flight window by backdating
			// its created_at directly, then the third create should succeed.
			Expect(gdb.Model(&model.ResourceInstance{}).
				Where("ref_id = ?", "a").
				Update("created_at", time.Now().UTC().Add(-2*time.Hour)).Error).NotTo(HaveOccurred())

			_, err = enforcer.Create(ctx, sec, &model.ResourceInstance{ResourceID: res.ID, Scope: "S6", RefID: "c", Status: model.StatusInflight})
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("license policy stamping", func() {
		It("stamps the instance with the org's currently active license, not the quota row's own license_policy_id", func() {
			gdb := storetest.NewDB(GinkgoT())
			resources = store.NewResourceRepository(gdb)
			orgs = store.NewOrganizationRepository(gdb)
			licenses = store.NewLicensePolicyRepository(gdb)
			principals = store.NewPrincipalRepository(gdb)
			quotas = store.NewResourceQuotaRepository(gdb)
			instances = store.NewResourceInstanceRepository(gdb)
			enforcer = quota.New(principals, licenses, instances)

			org, err := orgs.Create(ctx, &model.Organization{Name: "Renewed"}, "setup")
			Expect(err).NotTo(HaveOccurred())

			// oldPolicy already expired; it is what the quota row references,
			// but it is no longer the org's active policy.
			oldPolicy, err := licenses.Create(ctx, &model.LicensePolicy{
				OrganizationID: org.ID, Name: "Old Plan",
				EffectiveAt: time.Now().UTC().AddDate(-2, 0, 0), ExpiredAt: time.Now().UTC().AddDate(-1, 0, 0),
			}, "setup")
			Expect(err).NotTo(HaveOccurred())

			// newPolicy is the org's currently active policy.
			newPolicy, err := licenses.Create(ctx, &model.LicensePolicy{
				OrganizationID: org.ID, Name: "New Plan",
				EffectiveAt: time.Now().UTC().AddDate(-1, 0, 0), ExpiredAt: time.Now().UTC().AddDate(1, 0, 0),
			}, "setup")
			Expect(err).NotTo(HaveOccurred())

			res, err := resources.Create(ctx, &model.Resource{RealmID: "r", ResourceName: "Project"}, "setup")
			Expect(err).NotTo(HaveOccurred())
			_, err = quotas.Create(ctx, &model.ResourceQuota{
				ResourceID: res.ID, LicensePolicyID: oldPolicy.ID, Scope: "renewed", MaxValue: 1,
				EffectiveAt: time.Now().UTC().AddDate(-2, 0, 0), ExpiredAt: time.Now().UTC().AddDate(1, 0, 0),
			}, "setup")
			Expect(err).NotTo(HaveOccurred())
			p, err := principals.Create(ctx, &model.Principal{OrganizationID: org.ID, Username: "u"}, "setup")
			Expect(err).NotTo(HaveOccurred())
			sec.PrincipalID = p.ID

			inst, err := enforcer.Create(ctx, sec, &model.ResourceInstance{
				ResourceID: res.ID, Scope: "renewed", RefID: "ref-1", Status: model.StatusCompleted,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(inst.LicensePolicyID).To(Equal(newPolicy.ID))
			Expect(inst.LicensePolicyID).NotTo(Equal(oldPolicy.ID))
		})
	})

	Describe("concurrent creation", func() {
		It("never admits more instances than max_value under concurrent attempts", func() {
			gdb := storetest.NewDB(GinkgoT())
			resources = store.NewResourceRepository(gdb)
			orgs = store.NewOrganizationRepository(gdb)
			licenses = store.NewLicensePolicyRepository(gdb)
			principals = store.NewPrincipalRepository(gdb)
			quotas = store.NewResourceQuotaRepository(gdb)
			instances = store.NewResourceInstanceRepository(gdb)
			enforcer = quota.New(principals, licenses, instances)

			org, err := orgs.Create(ctx, &model.Organization{Name: "Concurrent"}, "setup")
			Expect(err).NotTo(HaveOccurred())
			policy, err := licenses.Create(ctx, &model.LicensePolicy{
				OrganizationID: org.ID, Name: "Plan",
				EffectiveAt: time.Now().UTC().AddDate(-1, 0, 0), ExpiredAt: time.Now().UTC().AddDate(1, 0, 0),
			}, "setup")
			Expect(err).NotTo(HaveOccurred())
			res, err := resources.Create(ctx, &model.Resource{RealmID: "r", ResourceName: "Project"}, "setup")
			Expect(err).NotTo(HaveOccurred())
			const max = 5
			_, err = quotas.Create(ctx, &model.ResourceQuota{
				ResourceID: res.ID, LicensePolicyID: policy.ID, Scope: "race", MaxValue: max,
				EffectiveAt: time.Now().UTC().AddDate(-1, 0, 0), ExpiredAt: time.Now().UTC().AddDate(1, 0, 0),
			}, "setup")
			Expect(err).NotTo(HaveOccurred())
			p, err := principals.Create(ctx, &model.Principal{OrganizationID: org.ID, Username: "u"}, "setup")
			Expect(err).NotTo(HaveOccurred())
			sec.PrincipalID = p.ID

			const attempts = 20
			var wg sync.WaitGroup
			var mu sync.Mutex
			successes := 0
			for i := 0; i < attempts; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, err := enforcer.Create(ctx, sec, &model.ResourceInstance{
						ResourceID: res.ID, Scope: "race", RefID: string(rune('a' + i)), Status: model.StatusCompleted,
					})
					if err == nil {
						mu.Lock()
						successes++
						mu.Unlock()
					}
				}(i)
			}
			wg.Wait()

			// The invariant under test is the ceiling, not the exact count:
			// SQLite's single-writer semantics can make some attempts lose a
			// lock race and fail outright rather than succeed, but no
			// interleaving may ever admit more than max.
			Expect(successes).To(BeNumerically("<=", max))
			Expect(successes).To(BeNumerically(">", 0))
		})
	})
})
