// Package feature routes typed requests to the single handler registered
// for the request's type.
//
// A feature pairs a trigger (the request type key) with the descriptor of the
// handler that serves it:
//
//	createUser := feature.Command[CreateUserCommand]("CreateUser", feature.Metadata{
//		Trigger: "CreateUserCommand",
//		Handler: di.Describe("CreateUserHandler", newCreateUserHandler).
//			DependsOn("Repository").
//			Build(),
//	})
//
//	d := feature.NewDispatcher()
//	if err := d.RegisterFeature(createUser); err != nil {
//		return err
//	}
//	_, err := d.Serve(ctx, CreateUserCommand{Name: "John Doe"})
//
// Trigger may be left empty, in which case it is read from the request type.
// A trigger that differs from the request type's key is rejected on
// registration, since Serve routes by RequestType.
//
// Handlers are resolved through the di container on every Serve, so their
// lifecycle follows the handler descriptor: transient unless it is marked
// singleton.
package feature
