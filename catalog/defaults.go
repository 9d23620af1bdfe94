package catalog

var defaultTopics = []TopicRecord{
	{
		ID:             "variables",
		Title:          "Variables",
		Summary:        "Variables are containers that store data values in programming. Think of them as labeled boxes where you can put information and retrieve it later.",
		SampleQuestion: "What is a variable and why is it useful in programming?",
	},
	{
		ID:             "loops",
		Title:          "Loops",
		Summary:        "Loops are programming constructs that let you repeat a block of code multiple times. There are 'for loops' and 'while loops'.",
		SampleQuestion: "Explain the difference between a for loop and a while loop.",
	},
	{
		ID:             "functions",
		Title:          "Functions",
		Summary:        "Functions are reusable blocks of code that perform a specific task. They help organize your code and avoid repetition.",
		SampleQuestion: "What is a function and how does it help organize code?",
	},
	{
		ID:             "conditionals",
		Title:          "Conditionals",
		Summary:        "Conditionals are statements that allow your program to make decisions based on certain conditions, like if-else statements.",
		SampleQuestion: "How do if-else statements help programs make decisions?",
	},
	{
		ID:             "arrays",
		Title:          "Arrays and Lists",
		Summary:        "Arrays or lists store multiple values in a single variable. You can access items by their position (index).",
		SampleQuestion: "What is an array and why would you use it instead of individual variables?",
	},
	{
		ID:             "objects",
		Title:          "Objects and Classes",
		Summary:        "Objects are collections of related data and functions bundled together. A class is like a blueprint for creating objects.",
		SampleQuestion: "Explain the relationship between classes and objects with an example.",
	},
	{
		ID:             "strings",
		Title:          "Strings",
		Summary:        "Strings are sequences of characters used to represent text in programming. You can manipulate them in many ways.",
		SampleQuestion: "What is a string and what are some common operations you can perform on strings?",
	},
	{
		ID:             "data_types",
		Title:          "Data Types",
		Summary:        "Data types define what kind of value a variable can hold: integers, floats, strings, booleans, etc.",
		SampleQuestion: "Why are data types important in programming? Give examples of different data types.",
	},
	{
		ID:             "recursion",
		Title:          "Recursion",
		Summary:        "Recursion is when a function calls itself to solve a problem by breaking it into smaller sub-problems.",
		SampleQuestion: "What is recursion and how does it differ from using a loop?",
	},
	{
		ID:             "error_handling",
		Title:          "Error Handling",
		Summary:        "Error handling is the process of anticipating and managing errors using try-catch blocks to prevent crashes.",
		SampleQuestion: "Why is error handling important and how do try-catch blocks work?",
	},
}
