// Package render turns values that know how to render themselves into file
// operations.
//
// A Renderable writes its content into any io.Writer. Adapt wraps one so it
// can be handed to the forge package as a Producer, and Generate and Append
// build the create-fresh and append operations bound to that adapter:
//
//	type Greeting struct {
//		Name string `json:"name"`
//	}
//
//	var greetingTemplate = render.NewTemplate[*Greeting]("greeting.txt")
//
//	func (g *Greeting) Render(w io.Writer) error {
//		return greetingTemplate.Execute(w, g)
//	}
//
//	err := render.Generate(&Greeting{Name: "World"}).Forge("hello.txt")
//
// Template looks its name up in a Registry, by default the process-wide one
// installed with Install, binds the value's json fields as the template
// context and streams the result into the writer.
package render
