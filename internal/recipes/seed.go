package recipes

import "context"

// Seed is the built-in starter catalog of vegan recipes.
var Seed = []Recipe{
	// Indian curries
	{
		Title:        "Vegan Chickpea Curry (Chana Masala)",
		Ingredients:  "2 cups chickpeas (cooked), 1 large onion, 3 tomatoes, 2 tbsp ginger-garlic paste, 1 tsp turmeric, 2 tsp garam masala, 1 tsp cumin seeds, 1 tsp coriander powder, 2 tbsp oil, salt, fresh cilantro",
		Instructions: "Heat oil in a pan. Add cumin seeds. Sauté onions until golden. Add ginger-garlic paste and cook for 2 minutes. Add tomatoes and spices. Cook until tomatoes break down. Add chickpeas and 1 cup water. Simmer for 15 minutes. Garnish with cilantro.",
		Metadata:     map[string]string{"cuisine": "Indian", "difficulty": "Easy", "prep_time": "15 min", "cook_time": "20 min"},
	},
	{
		Title:        "Vegan Palak Tofu (Spinach Curry with Tofu)",
		Ingredients:  "1 block firm tofu, 2 bunches spinach, 1 onion, 2 tomatoes, 2 green chilies, 1 tbsp ginger, 1 tsp cumin, 1 tsp turmeric, 1 tsp garam masala, 2 tbsp oil, salt",
		Instructions: "Blanch and puree spinach. Pan-fry tofu cubes until golden. In a pan, sauté onions, add tomatoes and spices. Add spinach puree and cook for 10 minutes. Add tofu and simmer for 5 minutes. Serve hot.",
		Metadata:     map[string]string{"cuisine": "Indian", "difficulty": "Medium", "prep_time": "20 min", "cook_time": "25 min"},
	},
	{
		Title:        "Vegan Dal Makhani (Creamy Lentil Curry)",
		Ingredients:  "1 cup black lentils (urad dal), 1/4 cup kidney beans, 1 onion, 2 tomatoes, 2 tbsp cashew cream, 1 tsp cumin, 1 tsp garam masala, 1 tsp red chili powder, 2 tbsp oil, salt, fresh cream (vegan)",
		Instructions: "Soak lentils and beans overnight. Pressure cook until soft. In a pan, sauté onions, add tomatoes and spices. Add cooked lentils and beans. Simmer for 20 minutes. Add cashew cream. Cook for 10 more minutes. Garnish with vegan cream.",
		Metadata:     map[string]string{"cuisine": "Indian", "difficulty": "Medium", "prep_time": "Overnight soak", "cook_time": "45 min"},
	},
	{
		Title:        "Vegan Aloo Gobi (Potato and Cauliflower Curry)",
		Ingredients:  "2 potatoes, 1 small cauliflower, 1 onion, 2 tomatoes, 1 tsp turmeric, 1 tsp cumin, 1 tsp coriander powder, 1/2 tsp red chili, 2 tbsp oil, salt, fresh cilantro",
		Instructions: "Cut potatoes and cauliflower into florets. Heat oil, add cumin seeds. Sauté onions until translucent. Add tomatoes and spices. Add vegetables and 1/2 cup water. Cover and cook until tender. Garnish with cilantro.",
		Metadata:     map[string]string{"cuisine": "Indian", "difficulty": "Easy", "prep_time": "15 min", "cook_time": "20 min"},
	},
	{
		Title:        "Vegan Baingan Bharta (Roasted Eggplant Curry)",
		Ingredients:  "2 large eggplants, 1 onion, 2 tomatoes, 2 green chilies, 1 tbsp ginger, 1 tsp cumin, 1 tsp turmeric, 1 tsp garam masala, 2 tbsp oil, salt, fresh cilantro",
		Instructions: "Roast eggplants over flame or in oven until charred. Peel and mash. Heat oil, sauté onions until golden. Add tomatoes, green chilies, and spices. Cook until tomatoes break down. Add mashed eggplant. Cook for 10 minutes. Garnish with cilantro.",
		Metadata:     map[string]string{"cuisine": "Indian", "difficulty": "Medium", "prep_time": "20 min", "cook_time": "30 min"},
	},
	{
		Title:        "Vegan Vegetable Korma",
		Ingredients:  "Mixed vegetables (carrots, peas, potatoes, cauliflower), 1 onion, 2 tbsp cashews, 1/2 cup coconut milk, 1 tsp turmeric, 1 tsp garam masala, 1 tsp coriander powder, 2 tbsp oil, salt",
		Instructions: "Soak cashews and blend into paste. Heat oil, sauté onions. Add vegetables and spices. Cook for 5 minutes. Add cashew paste and coconut milk. Simmer until vegetables are tender. Serve with rice or naan.",
		Metadata:     map[string]string{"cuisine": "Indian", "difficulty": "Medium", "prep_time": "15 min", "cook_time": "25 min"},
	},
	{
		Title:        "Vegan Rajma Curry (Kidney Bean Curry)",
		Ingredients:  "2 cups kidney beans (cooked), 1 onion, 2 tomatoes, 2 tbsp ginger-garlic paste, 1 tsp cumin, 1 tsp coriander powder, 1 tsp garam masala, 1/2 tsp red chili, 2 tbsp oil, salt",
		Instructions: "Heat oil, add cumin seeds. Sauté onions until golden. Add ginger-garlic paste. Add tomatoes and spices. Cook until tomatoes break down. Add kidney beans and 1 cup water. Simmer for 20 minutes. Mash some beans for thickness.",
		Metadata:     map[string]string{"cuisine": "Indian", "difficulty": "Easy", "prep_time": "10 min", "cook_time": "25 min"},
	},

	// Thai
	{
		Title:        "Vegan Pad Thai",
		Ingredients:  "200g rice noodles, 200g firm tofu, 2 cups bean sprouts, 3 spring onions, 2 cloves garlic, 3 tbsp tamarind paste, 2 tbsp soy sauce, 1 tbsp brown sugar, 2 tbsp oil, lime, crushed peanuts",
		Instructions: "Soak rice noodles. Pan-fry tofu until crispy. Heat oil, sauté garlic. Add noodles and sauce (tamarind, soy, sugar). Toss well. Add bean sprouts and spring onions. Serve with lime and crushed peanuts.",
		Metadata:     map[string]string{"cuisine": "Thai", "difficulty": "Medium", "prep_time": "15 min", "cook_time": "15 min"},
	},
	{
		Title:        "Vegan Green Curry",
		Ingredients:  "2 tbsp green curry paste, 1 can coconut milk, 1 block firm tofu, 1 eggplant, 1 bell pepper, 2 kaffir lime leaves, 1 tbsp soy sauce, 1 tsp sugar, Thai basil",
		Instructions: "Cut tofu and vegetables into chunks. Heat 1/4 cup coconut milk, add curry paste. Fry until fragrant. Add remaining coconut milk. Add vegetables and tofu. Simmer for 10 minutes. Add soy sauce and sugar. Garnish with basil.",
		Metadata:     map[string]string{"cuisine": "Thai", "difficulty": "Easy", "prep_time": "10 min", "cook_time": "15 min"},
	},
	{
		Title:        "Vegan Tom Yum Soup",
		Ingredients:  "4 cups vegetable broth, 2 stalks lemongrass, 3 kaffir lime leaves, 3 slices galangal, 2 red chilies, 200g mushrooms, 1 tomato, 2 tbsp lime juice, 1 tbsp soy sauce, cilantro",
		Instructions: "Bruise lemongrass and cut into pieces. Bring broth to boil. Add lemongrass, lime leaves, and galangal. Simmer for 5 minutes. Add mushrooms and tomato. Cook for 5 minutes. Add lime juice and soy sauce. Garnish with cilantro.",
		Metadata:     map[string]string{"cuisine": "Thai", "difficulty": "Easy", "prep_time": "10 min", "cook_time": "15 min"},
	},
	{
		Title:        "Vegan Massaman Curry",
		Ingredients:  "2 tbsp massaman curry paste, 1 can coconut milk, 2 potatoes, 1 onion, 1/2 cup peanuts, 1 block tofu, 2 tbsp tamarind paste, 1 tbsp brown sugar, 2 tbsp oil",
		Instructions: "Cut potatoes and tofu into chunks. Heat oil, fry curry paste until fragrant. Add coconut milk. Add potatoes and cook for 10 minutes. Add tofu, peanuts, and onion. Simmer for 15 minutes. Add tamarind and sugar. Serve with rice.",
		Metadata:     map[string]string{"cuisine": "Thai", "difficulty": "Medium", "prep_time": "15 min", "cook_time": "30 min"},
	},
	{
		Title:        "Vegan Red Curry with Vegetables",
		Ingredients:  "2 tbsp red curry paste, 1 can coconut milk, mixed vegetables (bell peppers, carrots, broccoli), 1 block tofu, 2 kaffir lime leaves, 1 tbsp soy sauce, Thai basil",
		Instructions: "Cut vegetables and tofu. Heat 1/4 cup coconut milk, add curry paste. Fry until fragrant. Add remaining coconut milk. Add vegetables and tofu. Simmer for 12 minutes. Add soy sauce. Garnish with basil.",
		Metadata:     map[string]string{"cuisine": "Thai", "difficulty": "Easy", "prep_time": "10 min", "cook_time": "15 min"},
	},
	{
		Title:        "Vegan Pad Krapow (Thai Basil Stir Fry)",
		Ingredients:  "200g firm tofu, 2 cups Thai basil, 3 cloves garlic, 2 red chilies, 2 tbsp soy sauce, 1 tbsp dark soy sauce, 1 tsp sugar, 2 tbsp oil, jasmine rice",
		Instructions: "Crumble tofu. Heat oil, fry garlic and chilies. Add tofu and stir-fry until golden. Add soy sauces and sugar. Add basil leaves. Toss quickly. Serve over jasmine rice.",
		Metadata:     map[string]string{"cuisine": "Thai", "difficulty": "Easy", "prep_time": "5 min", "cook_time": "10 min"},
	},
	{
		Title:        "Vegan Thai Yellow Curry",
		Ingredients:  "2 tbsp yellow curry paste, 1 can coconut milk, 2 potatoes, 1 onion, 1 block tofu, 1/2 cup coconut cream, 1 tbsp soy sauce, 1 tsp turmeric, 2 tbsp oil",
		Instructions: "Cut vegetables and tofu. Heat oil, fry curry paste. Add coconut milk. Add potatoes and cook for 10 minutes. Add tofu and onion. Simmer for 15 minutes. Add coconut cream and soy sauce. Serve with rice.",
		Metadata:     map[string]string{"cuisine": "Thai", "difficulty": "Easy", "prep_time": "10 min", "cook_time": "25 min"},
	},

	// Japanese
	{
		Title:        "Vegan Miso Soup",
		Ingredients:  "4 cups dashi (kombu seaweed broth), 3 tbsp white miso paste, 200g silken tofu, 2 sheets nori, 2 spring onions, wakame seaweed",
		Instructions: "Make dashi by simmering kombu. Remove kombu. Cut tofu into cubes. Soak wakame. Heat dashi, add wakame and tofu. Simmer for 2 minutes. Remove from heat, whisk in miso paste. Add nori strips and spring onions.",
		Metadata:     map[string]string{"cuisine": "Japanese", "difficulty": "Easy", "prep_time": "5 min", "cook_time": "10 min"},
	},
	{
		Title:        "Vegan Teriyaki Tofu",
		Ingredients:  "1 block firm tofu, 3 tbsp soy sauce, 2 tbsp mirin, 1 tbsp sake, 1 tbsp brown sugar, 1 tsp ginger, 2 tbsp oil, sesame seeds",
		Instructions: "Press tofu and cut into slices. Pan-fry until golden on both sides. Mix soy sauce, mirin, sake, sugar, and ginger. Add sauce to pan. Simmer until thick and glossy. Garnish with sesame seeds.",
		Metadata:     map[string]string{"cuisine": "Japanese", "difficulty": "Easy", "prep_time": "10 min", "cook_time": "15 min"},
	},
	{
		Title:        "Vegan Ramen",
		Ingredients:  "4 cups vegetable broth, 200g ramen noodles, 1 block marinated tofu, 2 sheets nori, 2 spring onions, 100g shiitake mushrooms, 1 sheet kombu, soy sauce, sesame oil",
		Instructions: "Make broth with kombu and shiitake. Simmer for 20 minutes. Strain. Cook noodles separately. Pan-fry tofu. Heat broth, add soy sauce. Assemble: noodles in bowl, add broth, top with tofu, mushrooms, nori, and spring onions.",
		Metadata:     map[string]string{"cuisine": "Japanese", "difficulty": "Medium", "prep_time": "15 min", "cook_time": "25 min"},
	},
	{
		Title:        "Vegan Vegetable Tempura",
		Ingredients:  "Mixed vegetables (sweet potato, bell pepper, broccoli, mushrooms), 1 cup all-purpose flour, 1 cup ice-cold sparkling water, 1 tsp baking powder, oil for frying, tempura dipping sauce",
		Instructions: "Cut vegetables into bite-sized pieces. Mix flour, baking powder, and ice-cold water (don't overmix). Heat oil to 180°C. Dip vegetables in batter. Fry until golden and crispy. Serve with tempura dipping sauce.",
		Metadata:     map[string]string{"cuisine": "Japanese", "difficulty": "Medium", "prep_time": "15 min", "cook_time": "15 min"},
	},
	{
		Title:        "Vegan Katsu Curry",
		Ingredients:  "1 block firm tofu, 2 tbsp curry roux, 1 onion, 1 carrot, 1 potato, 2 cups vegetable broth, panko breadcrumbs, flour, oil for frying, rice",
		Instructions: "Press and cut tofu. Bread with flour, then panko. Deep fry until golden. Sauté onion, carrot, and potato. Add broth and curry roux. Simmer until vegetables are tender. Serve curry over rice with katsu on top.",
		Metadata:     map[string]string{"cuisine": "Japanese", "difficulty": "Medium", "prep_time": "20 min", "cook_time": "25 min"},
	},
	{
		Title:        "Vegan Onigiri (Rice Balls)",
		Ingredients:  "2 cups cooked sushi rice, 1 sheet nori, 2 tbsp umeboshi (pickled plum) paste, 1/4 cup cooked vegetables, salt, sesame seeds",
		Instructions: "Wet hands with salt water. Take a handful of rice. Make a small indentation. Add filling (umeboshi or vegetables). Shape into triangle. Wrap with nori strip. Repeat. Can add sesame seeds for flavor.",
		Metadata:     map[string]string{"cuisine": "Japanese", "difficulty": "Easy", "prep_time": "10 min", "cook_time": "0 min"},
	},
}

// SeedStore adds every built-in recipe to the store, honoring its dedupe
// mode, and returns how many were newly added.
func SeedStore(ctx context.Context, store *Store) (int, error) {
	added := 0
	for i := range Seed {
		r := Seed[i]
		ok, err := store.Add(ctx, &r)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	return added, nil
}
