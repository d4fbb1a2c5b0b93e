package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/ccmarris/b1td-country-ip-blocking/internal/app"
	"github.com/ccmarris/b1td-country-ip-blocking/internal/config"
	"github.com/ccmarris/b1td-country-ip-blocking/internal/domain"
	"github.com/ccmarris/b1td-country-ip-blocking/internal/domain/subnet"
	"github.com/ccmarris/b1td-country-ip-blocking/internal/logger"
	"github.com/spf13/cobra"
)

type fakeLookup struct {
	perCode map[string][]domain.AddressRecord
	errs    map[string]error
}

func (f *fakeLookup) FetchCountryAddresses(_ context.Context, country string) ([]domain.AddressRecord, error) {
	if err := f.errs[country]; err != nil {
		return nil, err
	}
	return f.perCode[country], nil
}

type fakeCollectionStore struct {
	existing map[string]string
	failOn   map[string]error
	created  []string
}

func (f *fakeCollectionStore) FindCollectionByName(_ context.Context, name string) (string, error) {
	return f.existing[name], nil
}

func (f *fakeCollectionStore) CreateCollection(_ context.Context, name string, _ []domain.Item) error {
	if err := f.failOn[name]; err != nil {
		return err
	}
	f.created = append(f.created, name)
	return nil
}

type fakePolicyStore struct {
	policies map[string]string
	fetched  *domain.Policy
	updated  *domain.Policy
}

func (f *fakePolicyStore) FindPolicyByName(_ context.Context, name string) (string, error) {
	return f.policies[name], nil
}

func (f *fakePolicyStore) FetchPolicy(_ context.Context, _ string) (*domain.Policy, error) {
	return f.fetched, nil
}

func (f *fakePolicyStore) UpdatePolicy(_ context.Context, p *domain.Policy) error {
	f.updated = p
	return nil
}

func newTestRuntime(lookup *fakeLookup, store *fakeCollectionStore, policies *fakePolicyStore, maxItems int) *runtime {
	cfg := &config.Config{}
	cfg.CustomList = config.CustomList{MaxItems: maxItems, MinIPv4Prefix: 24}
	cfg.RPZ = config.RPZ{Zone: "test.rpz.local", View: "default"}

	logg := logger.NewWithWriter(io.Discard, &config.Logger{Level: "error"})
	partitioner := subnet.NewPartitioner(subnet.SplitPolicy{MinIPv4Prefix: 24})
	publisher := app.NewCollectionPublisher(store, logg)
	svc := app.NewBlockListService(lookup, partitioner, publisher, maxItems, logg)

	return &runtime{
		cfg:      cfg,
		log:      logg,
		svc:      svc,
		attacher: app.NewPolicyAttacher(policies, logg),
	}
}

func withRuntime(cmd *cobra.Command, rt *runtime) {
	cmd.SetContext(context.WithValue(context.Background(), runtimeKey, rt))
}

func TestSubnetsCmd_WritesFlatCSV(t *testing.T) {
	lookup := &fakeLookup{perCode: map[string][]domain.AddressRecord{
		"GB": {{CIDR: "81.0.0.0/17", Country: "GB"}},
	}}
	rt := newTestRuntime(lookup, &fakeCollectionStore{}, &fakePolicyStore{}, 10)

	cmd := newSubnetsCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	_ = cmd.Flags().Set("countries", "GB")
	withRuntime(cmd, rt)

	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("RunE returned error: %v", err)
	}

	want := "cidr,country\n81.0.0.0/17,GB\n"
	if out.String() != want {
		t.Fatalf("unexpected output:\ngot  %q\nwant %q", out.String(), want)
	}
}

func TestSubnetsCmd_LookupFailureSetsError(t *testing.T) {
	lookup := &fakeLookup{
		perCode: map[string][]domain.AddressRecord{"GB": {{CIDR: "81.0.0.0/17", Country: "GB"}}},
		errs:    map[string]error{"XX": errors.New("country not found")},
	}
	rt := newTestRuntime(lookup, &fakeCollectionStore{}, &fakePolicyStore{}, 10)

	cmd := newSubnetsCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	_ = cmd.Flags().Set("countries", "GB,XX")
	withRuntime(cmd, rt)

	err := cmd.RunE(cmd, nil)
	if err == nil {
		t.Fatalf("expected error when a lookup fails")
	}
	// частичный результат всё равно выводится
	if !strings.Contains(out.String(), "81.0.0.0/17,GB") {
		t.Fatalf("partial output lost: %q", out.String())
	}
}

func TestRPZCmd_UsesConfigZoneAndView(t *testing.T) {
	lookup := &fakeLookup{perCode: map[string][]domain.AddressRecord{
		"GB": {{CIDR: "10.11.12.0/24", Country: "GB"}},
	}}
	rt := newTestRuntime(lookup, &fakeCollectionStore{}, &fakePolicyStore{}, 10)

	cmd := newRPZCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	_ = cmd.Flags().Set("countries", "GB")
	withRuntime(cmd, rt)

	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("RunE returned error: %v", err)
	}
	if !strings.Contains(out.String(), "0.12.11.10.test.rpz.local") {
		t.Fatalf("zone from config not applied: %q", out.String())
	}
}

func TestCustomListCmd_PublishAndAttach(t *testing.T) {
	lookup := &fakeLookup{perCode: map[string][]domain.AddressRecord{
		"GB": {{CIDR: "81.0.0.0/23", Country: "GB"}},
	}}
	store := &fakeCollectionStore{}
	policies := &fakePolicyStore{
		policies: map[string]string{"Default": "7"},
		fetched:  &domain.Policy{ID: "7", Name: "Default"},
	}
	rt := newTestRuntime(lookup, store, policies, 1)

	cmd := newCustomListCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	_ = cmd.Flags().Set("countries", "GB")
	_ = cmd.Flags().Set("name", "cb")
	_ = cmd.Flags().Set("policy", "Default")
	withRuntime(cmd, rt)

	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("RunE returned error: %v", err)
	}

	if len(store.created) != 2 {
		t.Fatalf("expected 2 lists created, got %v", store.created)
	}
	if policies.updated == nil || len(policies.updated.Rules) != 2 {
		t.Fatalf("expected 2 rules attached, got %+v", policies.updated)
	}
	if !strings.Contains(out.String(), "created: cb-0") {
		t.Fatalf("missing created line: %q", out.String())
	}
	if !strings.Contains(out.String(), "attached 2 list(s) to policy Default") {
		t.Fatalf("missing attach line: %q", out.String())
	}
}

func TestCustomListCmd_BatchFailureSetsError(t *testing.T) {
	lookup := &fakeLookup{perCode: map[string][]domain.AddressRecord{
		"GB": {{CIDR: "81.0.0.0/23", Country: "GB"}},
	}}
	store := &fakeCollectionStore{failOn: map[string]error{"cb-1": errors.New("api error: status 500: boom")}}
	rt := newTestRuntime(lookup, store, &fakePolicyStore{}, 1)

	cmd := newCustomListCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	_ = cmd.Flags().Set("countries", "GB")
	_ = cmd.Flags().Set("name", "cb")
	withRuntime(cmd, rt)

	if err := cmd.RunE(cmd, nil); err == nil {
		t.Fatalf("expected non-nil error on batch failure")
	}
	if !strings.Contains(out.String(), "created: cb-0") {
		t.Fatalf("sibling batch result lost: %q", out.String())
	}
	if !strings.Contains(out.String(), "failed: cb-1") {
		t.Fatalf("failed batch not reported: %q", out.String())
	}
}

func TestCustomListCmd_NoCreatedListsSkipsAttach(t *testing.T) {
	lookup := &fakeLookup{perCode: map[string][]domain.AddressRecord{
		"GB": {{CIDR: "81.0.0.0/24", Country: "GB"}},
	}}
	store := &fakeCollectionStore{existing: map[string]string{"cb": "42"}}
	policies := &fakePolicyStore{policies: map[string]string{"Default": "7"}}
	rt := newTestRuntime(lookup, store, policies, 10)

	cmd := newCustomListCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	_ = cmd.Flags().Set("countries", "GB")
	_ = cmd.Flags().Set("name", "cb")
	_ = cmd.Flags().Set("policy", "Default")
	withRuntime(cmd, rt)

	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("skip-exists without failures must exit clean, got %v", err)
	}
	if policies.updated != nil {
		t.Fatalf("attach must not run when nothing was created")
	}
}

func TestVersionCmd_PrintsJSON(t *testing.T) {
	cmd := newVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)

	cmd.Run(cmd, nil)

	var got struct {
		Release   string
		BuildDate string
		GitHash   string
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("version output is not JSON: %v: %q", err, out.String())
	}
	if got.Release == "" {
		t.Fatalf("release must not be empty")
	}
}

func TestRootCmd_HasAllSubcommands(t *testing.T) {
	root := newRootCmd()

	want := []string{"subnets", "rpz", "custom-list", "version"}
	for _, name := range want {
		found := false
		for _, c := range root.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("subcommand %s not registered", name)
		}
	}
}
