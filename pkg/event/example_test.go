package event_test

import (
	"encoding/json"
	"fmt"

	"github.com/jittakal/kafanalytics/pkg/event"
)

func ExampleNew() {
	e := event.New(map[string]interface{}{
		"userId": "u1",
		"foo":    "bar",
	})

	data, _ := json.Marshal(e)
	fmt.Println(string(data))
	// Output: {"event_properties":{"foo":"bar"},"user_id":"u1"}
}

func ExampleEvent_Get() {
	e := event.New(nil).Set("device_id", "d-42")

	v, ok := e.Get("deviceId")
	fmt.Println(v, ok)

	_, ok = e.Get("userId")
	fmt.Println(ok)
	// Output:
	// d-42 true
	// false
}

func ExampleEvent_Set_coercion() {
	e := event.New(nil).
		Set("time", "42abc").
		Set("price", "3.5")

	t, _ := e.GetInt("time")
	p, _ := e.GetFloat("price")
	fmt.Println(t, p)
	// Output: 42 3.5
}

func ExampleEvent_SetUserProperties() {
	e := event.New(nil).
		SetUserProperties(map[string]interface{}{"a": 1}).
		SetUserProperties(map[string]interface{}{"b": 2})

	props, _ := e.GetMap("user_properties")
	data, _ := json.Marshal(props)
	fmt.Println(string(data))
	// Output: {"a":1,"b":2}
}
