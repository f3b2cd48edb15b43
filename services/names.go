package services

import (
	"context"

	"github.com/yeremiapane/site-engineer-app/repositories"
	"github.com/yeremiapane/site-engineer-app/utils"
)

// names resolves display names for the ids referenced by a result set.
// Unknown ids resolve to "".
type names struct {
	profiles map[string]string
	clients  map[string]string
	sites    map[string]string
}

type nameRefs struct {
	profiles []string
	clients  []string
	sites    []string
}

func (r *nameRefs) profile(id string) {
	if id != "" {
		r.profiles = append(r.profiles, id)
	}
}

func (r *nameRefs) optProfile(id *string) {
	if id != nil {
		r.profile(*id)
	}
}

func (r *nameRefs) client(id string) {
	if id != "" {
		r.clients = append(r.clients, id)
	}
}

func (r *nameRefs) site(id *string) {
	if id != nil && *id != "" {
		r.sites = append(r.sites, *id)
	}
}

func loadNames(ctx context.Context, store repositories.Store, refs nameRefs) (*names, error) {
	n := &names{
		profiles: map[string]string{},
		clients:  map[string]string{},
		sites:    map[string]string{},
	}

	if ids := dedupe(refs.profiles); len(ids) > 0 {
		profiles, err := store.ListProfiles(ctx, repositories.ProfileFilter{IDs: ids})
		if err != nil {
			return nil, utils.ErrInternal(err)
		}
		for _, p := range profiles {
			n.profiles[p.ID] = p.FullName
		}
	}
	if ids := dedupe(refs.clients); len(ids) > 0 {
		clients, err := store.ListClients(ctx, repositories.ClientFilter{IDs: ids})
		if err != nil {
			return nil, utils.ErrInternal(err)
		}
		for _, c := range clients {
			n.clients[c.ID] = c.Name
		}
	}
	if ids := dedupe(refs.sites); len(ids) > 0 {
		sites, err := store.ListSites(ctx, repositories.SiteFilter{IDs: ids})
		if err != nil {
			return nil, utils.ErrInternal(err)
		}
		for _, site := range sites {
			n.sites[site.ID] = site.Name
		}
	}
	return n, nil
}

func (n *names) profile(id string) string {
	return n.profiles[id]
}

func (n *names) optProfile(id *string) *string {
	if id == nil {
		return nil
	}
	name, ok := n.profiles[*id]
	if !ok {
		return nil
	}
	return &name
}

func (n *names) client(id string) string {
	return n.clients[id]
}

func (n *names) site(id *string) *string {
	if id == nil {
		return nil
	}
	name, ok := n.sites[*id]
	if !ok {
		return nil
	}
	return &name
}

func dedupe(ids []string) []string {
	return uniqueStrings(len(ids), func(i int) string { return ids[i] })
}
