package local

import (
	"context"
	"time"

	"github.com/lagoonledger/lagoon/internal/shared/types"
)

// GetObject returns the current version of a live object.
func (p *Provider) GetObject(ctx context.Context, oid types.ObjectID) (obj *types.VersionedObject, err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveProviderCall("GetObject", start, err) }()
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	return p.reg.Get(oid)
}

// GetObjectRef returns the (id, version, digest) reference of a live object.
func (p *Provider) GetObjectRef(ctx context.Context, oid types.ObjectID) (ref types.ObjectRef, err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveProviderCall("GetObjectRef", start, err) }()
	if err = ctx.Err(); err != nil {
		return types.ObjectRef{}, err
	}
	obj, err := p.reg.Get(oid)
	if err != nil {
		return types.ObjectRef{}, err
	}
	return obj.Ref(), nil
}

// MultiGetObjects returns objects in input order. One missing ID fails the
// whole call.
func (p *Provider) MultiGetObjects(ctx context.Context, oids []types.ObjectID) (objs []*types.VersionedObject, err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveProviderCall("MultiGetObjects", start, err) }()
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	objs = make([]*types.VersionedObject, 0, len(oids))
	for _, oid := range oids {
		obj, err := p.reg.Get(oid)
		if err != nil {
			return nil, err
		}
		objs = append(objs, obj)
	}
	return objs, nil
}

// GetObjectsOwnedByAddress returns every live object owned by the address,
// sorted by ID.
func (p *Provider) GetObjectsOwnedByAddress(ctx context.Context, addr types.Address) (objs []*types.VersionedObject, err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveProviderCall("GetObjectsOwnedByAddress", start, err) }()
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	return p.reg.OwnedBy(types.OwnedByAddress(addr)), nil
}

// GetObjectsOwnedByObject returns every live child object of the parent,
// sorted by ID.
func (p *Provider) GetObjectsOwnedByObject(ctx context.Context, oid types.ObjectID) (objs []*types.VersionedObject, err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveProviderCall("GetObjectsOwnedByObject", start, err) }()
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	return p.reg.OwnedBy(types.OwnedByObject(oid)), nil
}
