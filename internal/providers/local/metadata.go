package local

import (
	"context"
	"fmt"
	"time"

	"github.com/lagoonledger/lagoon/internal/schema"
	"github.com/lagoonledger/lagoon/internal/shared/errs"
	"github.com/lagoonledger/lagoon/internal/shared/types"
)

// GetNormalizedModulesByPackage returns every module of a registered
// package, keyed by module name.
func (p *Provider) GetNormalizedModulesByPackage(ctx context.Context, addr types.Address) (modules map[string]schema.Module, err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveProviderCall("GetNormalizedModulesByPackage", start, err) }()
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	pkg, ok := p.Schemas().PackageByAddress(addr)
	if !ok {
		return nil, errs.NotFound(string(addr))
	}
	modules = make(map[string]schema.Module, len(pkg.Modules))
	for name, mod := range pkg.Modules {
		modules[name] = mod
	}
	return modules, nil
}

// GetNormalizedModule returns one module of a registered package.
func (p *Provider) GetNormalizedModule(ctx context.Context, addr types.Address, module string) (mod *schema.Module, err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveProviderCall("GetNormalizedModule", start, err) }()
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	return p.lookupModule(addr, module)
}

// GetNormalizedFunction returns one function declaration of a module.
func (p *Provider) GetNormalizedFunction(ctx context.Context, addr types.Address, module, function string) (fn *schema.FunctionDef, err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveProviderCall("GetNormalizedFunction", start, err) }()
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	mod, err := p.lookupModule(addr, module)
	if err != nil {
		return nil, err
	}
	decl, ok := mod.Functions[function]
	if !ok {
		return nil, errs.NotFound(fmt.Sprintf("%s::%s::%s", addr, module, function))
	}
	return &decl, nil
}

// GetNormalizedStruct returns one struct declaration of a module.
func (p *Provider) GetNormalizedStruct(ctx context.Context, addr types.Address, module, structName string) (def *schema.StructDef, err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveProviderCall("GetNormalizedStruct", start, err) }()
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	mod, err := p.lookupModule(addr, module)
	if err != nil {
		return nil, err
	}
	decl, ok := mod.Structs[structName]
	if !ok {
		return nil, errs.NotFound(fmt.Sprintf("%s::%s::%s", addr, module, structName))
	}
	return &decl, nil
}

// GetReferenceGasPrice returns the configured flat gas price.
func (p *Provider) GetReferenceGasPrice(ctx context.Context) (price uint64, err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveProviderCall("GetReferenceGasPrice", start, err) }()
	if err = ctx.Err(); err != nil {
		return 0, err
	}
	return p.cfg.Genesis.GasPrice, nil
}

func (p *Provider) lookupModule(addr types.Address, module string) (*schema.Module, error) {
	pkg, ok := p.Schemas().PackageByAddress(addr)
	if !ok {
		return nil, errs.NotFound(string(addr))
	}
	mod, ok := pkg.Modules[module]
	if !ok {
		return nil, errs.NotFound(fmt.Sprintf("%s::%s", addr, module))
	}
	return &mod, nil
}
