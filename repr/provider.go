package repr

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/molvis/builders"
	"github.com/gogpu/molvis/params"
	"github.com/gogpu/molvis/theme"
)

// ErrUnknownProvider is returned for provider names that were never
// registered.
var ErrUnknownProvider = errors.New("repr: unknown provider")

// Provider describes a kind of representation: the builders it is made of
// and the parameter values it starts from.
type Provider struct {
	Name        string
	Description string

	// Builders are the registry names of the child visuals, in draw order.
	Builders []string

	// Params are applied before the props of the first Create.
	Params params.Values
}

// Registry state - protected by mutex for thread-safe access.
var (
	registryMu sync.RWMutex
	providers  = make(map[string]Provider)
)

func init() {
	for _, p := range []Provider{
		{
			Name:        "spacefill",
			Description: "Atoms as van der Waals spheres.",
			Builders:    []string{builders.ElementSphereName},
		},
		{
			Name:        "ball",
			Description: "Atoms as sphere impostors.",
			Builders:    []string{builders.ElementSpheresName},
			Params:      params.Values{"sizeFactor": 0.3},
		},
		{
			Name:        "point",
			Description: "Atoms as points.",
			Builders:    []string{builders.ElementPointName},
		},
		{
			Name:        "trace",
			Description: "Backbone trace as lines.",
			Builders:    []string{builders.PolymerTraceName},
		},
		{
			Name:        "tube",
			Description: "Backbone trace as a tube.",
			Builders:    []string{builders.PolymerTubeName},
		},
		{
			Name:        "label",
			Description: "Residue name and number labels.",
			Builders:    []string{builders.ResidueLabelName},
			Params:      params.Values{"colorTheme": theme.UniformColor(theme.DefaultPalette[0])},
		},
		{
			Name:        "surface",
			Description: "Gaussian molecular surface.",
			Builders:    []string{builders.GaussianSurfaceName},
		},
		{
			Name:        "volume",
			Description: "Gaussian density volume.",
			Builders:    []string{builders.GaussianVolumeName},
		},
		{
			Name:        "residue-spheres",
			Description: "One sphere per residue.",
			Builders:    []string{builders.ResidueSphereName},
		},
	} {
		Register(p)
	}
}

// Register registers a provider under p.Name.
//
// Register panics if:
//   - p has no builders
//   - a provider with the same name is already registered
func Register(p Provider) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if len(p.Builders) == 0 {
		panic("repr: Register provider without builders: " + p.Name)
	}
	if _, dup := providers[p.Name]; dup {
		panic("repr: Register called twice for " + p.Name)
	}
	providers[p.Name] = p
}

// Unregister removes a provider. It is a no-op for unknown names.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(providers, name)
}

// Lookup returns the provider registered under name.
func Lookup(name string) (Provider, error) {
	registryMu.RLock()
	p, ok := providers[name]
	registryMu.RUnlock()

	if !ok {
		return Provider{}, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

// Providers returns the registered provider names sorted alphabetically.
func Providers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
