// Package di provides the dependency-injection runtime of oswald.
//
// Constructible types are described explicitly: a registration key, the
// ordered keys of their constructor dependencies, optional per-position
// override tokens, and a singleton flag. The container resolves a descriptor
// by resolving each dependency through its own registry, detecting circular
// chains, and invoking the constructor with the results in declared order.
//
// # Registration
//
//	repo := di.Describe("Repository", func(di.Args) (any, error) {
//	    return &Repository{}, nil
//	}).Build()
//
//	handler := di.Describe("CreateUserHandler", func(args di.Args) (any, error) {
//	    r, err := di.Arg[*Repository](args, 0)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return &CreateUserHandler{repo: r}, nil
//	}).DependsOn("Repository").Build()
//
//	c := di.GetInstance()
//	_ = c.Provide(repo)
//	_ = c.Provide(handler)
//
// # Resolution
//
//	h := di.MustResolve[*CreateUserHandler](c, "CreateUserHandler")
package di
